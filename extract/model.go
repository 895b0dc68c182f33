package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formfiller/types"
)

// DefaultPromptTemplate is filled, in order, with the JSON structure, the current record
// and the conversation.
const DefaultPromptTemplate = "Your task is to fill up a JSON out of a conversation.\n" +
	"The JSON must have this format:\n```json\n%s\n```\n\n" +
	"This is the current JSON:\n```json\n%s\n```\n\n" +
	"This is the conversation:\n\n%s\n\n" +
	"Updated JSON:\n```json\n"

var ErrNoObject = errors.New("reply does not contain a JSON object")

// ModelExtractor prompts the model for a JSON object with the field values found in the turn.
type ModelExtractor struct {
	chatModel      model.BaseChatModel
	promptTemplate string
	stop           []string
}

type modelExtractorOptions struct {
	promptTemplate string
	stop           []string
}

type ModelOption func(*modelExtractorOptions)

// WithPromptTemplate overrides DefaultPromptTemplate. The template must take three "%s" verbs.
func WithPromptTemplate(tpl string) ModelOption {
	return func(o *modelExtractorOptions) {
		o.promptTemplate = tpl
	}
}

// WithStop overrides the stop sequences sent with the request.
func WithStop(stop ...string) ModelOption {
	return func(o *modelExtractorOptions) {
		o.stop = stop
	}
}

func NewModelExtractor(chatModel model.BaseChatModel, opts ...ModelOption) *ModelExtractor {
	options := modelExtractorOptions{
		promptTemplate: DefaultPromptTemplate,
		stop:           []string{"```"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.promptTemplate == "" {
		options.promptTemplate = DefaultPromptTemplate
	}
	return &ModelExtractor{
		chatModel:      chatModel,
		promptTemplate: options.promptTemplate,
		stop:           options.stop,
	}
}

func (e *ModelExtractor) Extract(ctx context.Context, req *Request) (types.Record, error) {
	prompt, err := e.BuildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("build extraction prompt: %w", err)
	}
	var opts []model.Option
	if len(e.stop) > 0 {
		opts = append(opts, model.WithStop(e.stop))
	}
	resp, err := e.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)}, opts...)
	if err != nil {
		slog.Error("extraction model call failed", "err", err)
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	content := ""
	if resp != nil {
		content = resp.Content
	}
	out, err := ParseReply(content)
	if err != nil {
		slog.Warn("extraction reply is not a JSON object, nothing extracted", "err", err, "reply_len", len(content))
		return types.Record{}, nil
	}
	slog.Debug("extraction parsed", "fields", len(out))
	return out, nil
}

// BuildPrompt renders the single user message sent to the model.
func (e *ModelExtractor) BuildPrompt(req *Request) (string, error) {
	if req == nil || req.Fields == nil {
		return "", errors.New("request has no field descriptor")
	}
	current, err := sonic.ConfigStd.MarshalIndent(req.Record.Clone(), "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal current record: %w", err)
	}
	var history []*schema.Message
	if req.Conversation != nil {
		history = req.Conversation.Window(req.window())
	}
	conversation := types.FormatConversation(history, req.utterance())
	return fmt.Sprintf(e.promptTemplate, req.Fields.Structure(), string(current), conversation), nil
}

// ParseReply decodes a model reply into a flat record. Markdown fences and text around
// the outermost JSON object are ignored.
func ParseReply(reply string) (types.Record, error) {
	body := strings.TrimSpace(reply)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var out types.Record
	if err := sonic.UnmarshalString(body, &out); err == nil && out != nil {
		return out, nil
	}
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, ErrNoObject
	}
	out = nil
	if err := sonic.UnmarshalString(body[start:end+1], &out); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	if out == nil {
		return nil, ErrNoObject
	}
	return out, nil
}
