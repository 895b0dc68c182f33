package intent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultPromptTemplate takes the question description, the question key (twice) and the utterance.
// The prompt ends inside an open JSON object so the model only has to write the value.
const DefaultPromptTemplate = "Your task is to produce a JSON representing %[1]s.\n" +
	"JSON must be in this format:\n```json\n{\n    \"%[2]s\": // type boolean, must be `true` or `false`\n}\n```\n\n" +
	"User said \"%[3]s\"\n\n" +
	"JSON:\n```json\n{\n    \"%[2]s\": "

// ModelClassifier asks the model to complete a constrained JSON fragment and reduces
// the reply to a boolean.
type ModelClassifier struct {
	chatModel      model.BaseChatModel
	reducer        Reducer
	promptTemplate string
}

type modelClassifierOptions struct {
	reducer        Reducer
	promptTemplate string
}

type ModelOption func(*modelClassifierOptions)

// WithReducer replaces the default Permissive reducer.
func WithReducer(r Reducer) ModelOption {
	return func(o *modelClassifierOptions) {
		o.reducer = r
	}
}

// WithPromptTemplate overrides DefaultPromptTemplate; it receives the same three arguments.
func WithPromptTemplate(tpl string) ModelOption {
	return func(o *modelClassifierOptions) {
		o.promptTemplate = tpl
	}
}

func NewModelClassifier(chatModel model.BaseChatModel, opts ...ModelOption) *ModelClassifier {
	options := modelClassifierOptions{
		reducer:        Permissive,
		promptTemplate: DefaultPromptTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if options.reducer == nil {
		options.reducer = Permissive
	}
	if options.promptTemplate == "" {
		options.promptTemplate = DefaultPromptTemplate
	}
	return &ModelClassifier{
		chatModel:      chatModel,
		reducer:        options.reducer,
		promptTemplate: options.promptTemplate,
	}
}

func (c *ModelClassifier) BuildPrompt(q Question, utterance string) string {
	return fmt.Sprintf(c.promptTemplate, q.Description, q.Key, utterance)
}

func (c *ModelClassifier) Classify(ctx context.Context, q Question, utterance string) (bool, error) {
	resp, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(c.BuildPrompt(q, utterance)),
	})
	if err != nil {
		slog.Error("intent model call failed", "question", q.Key, "err", err)
		return false, fmt.Errorf("LLM call failed: %w", err)
	}
	reply := ""
	if resp != nil {
		reply = resp.Content
	}
	answer := c.reducer(q, reply)
	slog.Debug("intent classified", "question", q.Key, "answer", answer)
	return answer, nil
}
