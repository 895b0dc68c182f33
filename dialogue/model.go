package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formfiller/types"
)

// DefaultSystemPromptTemplate may contain a single "%s" placeholder for the language.
const DefaultSystemPromptTemplate = `You are a friendly form assistant. Turn the form recap you are given into a short conversational reply.

- If there are missing fields, ask for them casually. Don't ask for many at once.
- If there are invalid fields, explain what is wrong in simple words.
- If you are asked for confirmation, restate the collected values and ask a clear yes/no question.
- Never invent values that are not in the recap.
- Reply in %s.
`

// ModelComposer asks the model to rephrase the recap. Pair it with a RecapComposer in a
// FailbackComposer so the user still gets an answer when the model is unavailable.
type ModelComposer struct {
	Lang         string
	systemPrompt string
	chatModel    model.BaseChatModel
	recap        RecapComposer
}

type composerOptions struct {
	lang                 string
	systemPrompt         string
	systemPromptTemplate string
}

type ComposerOption func(*composerOptions)

func WithLang(lang string) ComposerOption {
	return func(o *composerOptions) {
		o.lang = lang
	}
}

// WithSystemPrompt replaces the system prompt entirely.
func WithSystemPrompt(systemPrompt string) ComposerOption {
	return func(o *composerOptions) {
		o.systemPrompt = systemPrompt
	}
}

// WithSystemPromptTemplate replaces the template; "%s" in it is filled with the language.
func WithSystemPromptTemplate(tpl string) ComposerOption {
	return func(o *composerOptions) {
		o.systemPromptTemplate = tpl
	}
}

func NewModelComposer(chatModel model.BaseChatModel, opts ...ComposerOption) *ModelComposer {
	options := composerOptions{
		lang:                 "English",
		systemPromptTemplate: DefaultSystemPromptTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.lang == "" {
		options.lang = "English"
	}
	systemPrompt := options.systemPrompt
	if systemPrompt == "" {
		systemPrompt = options.systemPromptTemplate
		if strings.Contains(systemPrompt, "%s") {
			systemPrompt = fmt.Sprintf(systemPrompt, options.lang)
		}
	}
	return &ModelComposer{
		Lang:         options.lang,
		systemPrompt: systemPrompt,
		chatModel:    chatModel,
	}
}

func (c *ModelComposer) Compose(ctx context.Context, recap *Recap) (string, error) {
	resp, err := c.chatModel.Generate(ctx, c.buildPrompt(recap))
	if err != nil {
		slog.Error("compose model call failed", "err", err)
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errors.New("LLM call failed: message is empty")
	}
	return strings.TrimSpace(resp.Content), nil
}

func (c *ModelComposer) buildPrompt(recap *Recap) []*schema.Message {
	sections := make([]string, 0, 5)
	if recap.Form != "" {
		sections = append(sections, fmt.Sprintf("# Form:\n%s", recap.Form))
	}
	if recap.Fields != nil {
		sections = append(sections, recap.Fields.Table())
	}
	sections = append(sections, fmt.Sprintf("# Recap:\n%s", c.recap.Render(recap)))
	if recap.State == types.StateWaitConfirm {
		sections = append(sections, "# Ask the user to confirm the form.")
	}
	if recap.Utterance != "" {
		sections = append(sections, fmt.Sprintf("# User's last message:\n%s", recap.Utterance))
	}
	return []*schema.Message{
		schema.SystemMessage(c.systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}
}
