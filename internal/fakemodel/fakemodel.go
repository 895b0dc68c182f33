// Package fakemodel provides a scripted chat model for tests.
package fakemodel

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Call is one recorded Generate call.
type Call struct {
	Messages []*schema.Message
	Options  *model.Options
}

// Prompt joins the message contents of the call.
func (c Call) Prompt() string {
	parts := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}

// Responder produces the reply for one call.
type Responder func(call Call) (*schema.Message, error)

var ErrExhausted = errors.New("fakemodel: no scripted reply left")

type Model struct {
	mu      sync.Mutex
	respond Responder
	calls   []Call
}

var _ model.ToolCallingChatModel = (*Model)(nil)

func New(respond Responder) *Model {
	return &Model{respond: respond}
}

// Text answers every call through fn with a plain assistant message.
func Text(fn func(prompt string) (string, error)) *Model {
	return New(func(call Call) (*schema.Message, error) {
		content, err := fn(call.Prompt())
		if err != nil {
			return nil, err
		}
		return schema.AssistantMessage(content, nil), nil
	})
}

// Queue replies with the given messages in order and fails once they run out.
func Queue(replies ...*schema.Message) *Model {
	var i int
	return New(func(call Call) (*schema.Message, error) {
		if i >= len(replies) {
			return nil, ErrExhausted
		}
		r := replies[i]
		i++
		return r, nil
	})
}

// ToolCall builds an assistant message carrying one tool call.
func ToolCall(name, arguments string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:   "call_" + name,
		Type: "function",
		Function: schema.FunctionCall{
			Name:      name,
			Arguments: arguments,
		},
	}})
}

func (m *Model) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	call := Call{
		Messages: input,
		Options:  model.GetCommonOptions(&model.Options{}, opts...),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.respond(call)
}

func (m *Model) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *Model) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *Model) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Model) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
