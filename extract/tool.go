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
	"github.com/tbxark/formfiller/structured"
	"github.com/tbxark/formfiller/types"
)

const (
	updateFormToolName        = "update_form"
	updateFormToolDescription = "Set form fields from information the user explicitly provided. Leave out every field the user has not mentioned."
)

const DefaultToolSystemPrompt = `You are a form assistant. Read the conversation and call the '%s' tool with the form fields the user has provided.
Rules:
- only use information the user stated explicitly
- include a field again only if the user changed it
- leave out fields that are still unknown`

// ToolExtractor asks the model for a forced tool call whose parameters are the form's JSON schema.
type ToolExtractor struct {
	chatModel    model.BaseChatModel
	systemPrompt string
}

func NewToolExtractor(chatModel model.BaseChatModel) *ToolExtractor {
	return &ToolExtractor{
		chatModel:    chatModel,
		systemPrompt: fmt.Sprintf(DefaultToolSystemPrompt, updateFormToolName),
	}
}

func (e *ToolExtractor) Extract(ctx context.Context, req *Request) (types.Record, error) {
	if req == nil || req.Fields == nil {
		return nil, errors.New("request has no field descriptor")
	}
	toolInfo := &schema.ToolInfo{
		Name:        updateFormToolName,
		Desc:        updateFormToolDescription,
		ParamsOneOf: schema.NewParamsOneOfByJSONSchema(req.Fields.JSONSchema()),
	}
	chain := structured.NewChainWithTool[*Request, types.Record](e.chatModel, e.buildPrompt, toolInfo)

	out, err := chain.Invoke(ctx, req)
	if err != nil {
		var decodeErr *structured.DecodeError
		if errors.As(err, &decodeErr) {
			slog.Warn("extraction tool call unusable, nothing extracted", "err", err)
			return types.Record{}, nil
		}
		slog.Error("extraction tool call failed", "err", err)
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if out == nil || *out == nil {
		return types.Record{}, nil
	}
	return *out, nil
}

func (e *ToolExtractor) buildPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	stateJSON, err := sonic.Marshal(req.Record.Clone())
	if err != nil {
		return nil, fmt.Errorf("marshal form state: %w", err)
	}
	var history []*schema.Message
	if req.Conversation != nil {
		history = req.Conversation.Window(req.window())
	}
	sections := []string{
		req.Fields.Table(),
		fmt.Sprintf("# Form state JSON:\n```json\n%s\n```", string(stateJSON)),
		fmt.Sprintf("# Conversation:\n%s", types.FormatConversation(history, req.utterance())),
	}
	return []*schema.Message{
		schema.SystemMessage(e.systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}
