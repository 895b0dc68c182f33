// Package structured gets typed output from a chat model by forcing a single tool call
// and decoding its arguments.
package structured

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

type Chain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	ChatModel     model.BaseChatModel
	ToolInfo      *schema.ToolInfo
}

// NewChain infers the tool parameters from the TOutput struct.
func NewChain[TInput, TOutput any](
	chatModel model.BaseChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
) (*Chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return NewChainWithTool[TInput, TOutput](chatModel, promptBuilder, toolInfo), nil
}

// NewChainWithTool uses a caller-built tool, for outputs whose shape is only known at runtime.
func NewChainWithTool[TInput, TOutput any](
	chatModel model.BaseChatModel,
	promptBuilder PromptBuilder[TInput],
	toolInfo *schema.ToolInfo,
) *Chain[TInput, TOutput] {
	return &Chain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		ChatModel:     chatModel,
		ToolInfo:      toolInfo,
	}
}

// Invoke returns a *DecodeError when the model answered but its arguments could not be decoded,
// and a plain wrapped error when the call itself failed.
func (s *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := s.PromptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}

	response, err := s.ChatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{s.ToolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, s.ToolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}
	if response == nil || len(response.ToolCalls) == 0 {
		content := ""
		if response != nil {
			content = response.Content
		}
		return nil, &DecodeError{Err: fmt.Errorf("no ToolCall found in model response: %s", content)}
	}

	args := response.ToolCalls[0].Function.Arguments
	for _, tc := range response.ToolCalls {
		if tc.Function.Name == s.ToolInfo.Name {
			args = tc.Function.Arguments
			break
		}
	}

	var result TOutput
	if err := sonic.UnmarshalString(args, &result); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("parse ToolCall arguments failed: %w", err)}
	}
	return &result, nil
}

func (s *Chain[TInput, TOutput]) GetToolInfo() *schema.ToolInfo {
	return s.ToolInfo
}

// DecodeError marks a reply that arrived but did not carry usable tool arguments.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
