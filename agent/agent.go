package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formfiller/types"
)

var _ adk.Agent = (*Agent[any])(nil)

// Agent exposes Sessions as an eino adk.Agent. The last input message is the user's
// utterance and the ones before it are the history.
type Agent[R any] struct {
	name         string
	description  string
	sessions     *Sessions[R]
	formatResult func(R) string
}

type AgentOption[R any] func(*Agent[R])

// WithResultFormatter renders the submission result as the agent's final message.
func WithResultFormatter[R any](fn func(R) string) AgentOption[R] {
	return func(a *Agent[R]) {
		a.formatResult = fn
	}
}

func NewAgent[R any](sessions *Sessions[R], opts ...AgentOption[R]) *Agent[R] {
	def := sessions.Definition()
	a := &Agent[R]{
		name:        def.Name,
		description: def.Description,
		sessions:    sessions,
		formatResult: func(r R) string {
			return fmt.Sprint(r)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Agent[R]) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent[R]) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent[R]) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: ErrNoInput,
			})
			return
		}
		last := len(input.Messages) - 1
		resp, err := a.sessions.Next(ctx, &types.Conversation{
			Utterance: input.Messages[last].Content,
			History:   input.Messages[:last],
		})
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("form turn failed: %w", err),
			})
			return
		}
		content := resp.Message
		if resp.Submitted {
			content = a.formatResult(resp.Result)
		}
		if content == "" {
			// closed without submission ends the dialogue silently
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     schema.AssistantMessage(content, nil),
					Role:        schema.Assistant,
				},
			},
		})
	}()
	return iter
}

// IsClosed reports whether the session in ctx has finished.
func (a *Agent[R]) IsClosed(ctx context.Context) (bool, error) {
	form, err := a.sessions.Form(ctx)
	if err != nil {
		return false, err
	}
	return form.State() == types.StateClosed, nil
}
