package intent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formfiller/structured"
)

const (
	answerToolName        = "answer_question"
	answerToolDescription = "Answer a yes/no question about the user's latest message."
)

const DefaultToolSystemPrompt = `You are an assistant for a form-filling robot.
Decide %s, judging only from the user's latest message.
Do not read general negations or affirmations as an answer unless they clearly refer to the question.
Call the '%s' tool with the result.`

type answer struct {
	Value bool `json:"value" jsonschema:"required,description=true for yes and false for no"`
}

type classifyInput struct {
	Question  Question
	Utterance string
}

// ToolClassifier forces a tool call returning a JSON boolean, so no text reduction is needed.
type ToolClassifier struct {
	chain *structured.Chain[*classifyInput, answer]
}

func NewToolClassifier(chatModel model.BaseChatModel) (*ToolClassifier, error) {
	chain, err := structured.NewChain[*classifyInput, answer](
		chatModel,
		buildToolPrompt,
		answerToolName,
		answerToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolClassifier{chain: chain}, nil
}

func (c *ToolClassifier) Classify(ctx context.Context, q Question, utterance string) (bool, error) {
	result, err := c.chain.Invoke(ctx, &classifyInput{Question: q, Utterance: utterance})
	if err != nil {
		return false, fmt.Errorf("classify %s: %w", q.Key, err)
	}
	return result.Value, nil
}

func buildToolPrompt(ctx context.Context, in *classifyInput) ([]*schema.Message, error) {
	return []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(DefaultToolSystemPrompt, in.Question.Description, answerToolName)),
		schema.UserMessage(in.Utterance),
	}, nil
}
