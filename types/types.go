package types

import (
	"maps"
	"time"

	"github.com/cloudwego/eino/schema"
)

type State string

const (
	StateIncomplete  State = "incomplete"
	StateComplete    State = "complete"
	StateWaitConfirm State = "wait_confirm"
	StateClosed      State = "closed"
)

// Terminal reports whether no further turn can change a form in this state.
func (s State) Terminal() bool {
	return s == StateClosed
}

// Record is the field-value mapping being filled for one form.
type Record map[string]any

// Clone returns a shallow copy. A nil record clones to an empty one.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	maps.Copy(out, r)
	return out
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// DefaultHistoryWindow is the number of prior turns shown to the model.
const DefaultHistoryWindow = 10

// Conversation is the read-only view of a dialogue handed to the form on every turn.
type Conversation struct {
	Utterance string            `json:"utterance"`
	History   []*schema.Message `json:"history,omitempty"`
}

// Window returns the last n non-nil history messages, oldest first.
func (c *Conversation) Window(n int) []*schema.Message {
	if c == nil || n <= 0 {
		return nil
	}
	out := make([]*schema.Message, 0, len(c.History))
	for _, m := range c.History {
		if m != nil {
			out = append(out, m)
		}
	}
	if len(out) <= n {
		return out
	}
	return out[len(out)-n:]
}

const SnapshotVersion = "1.0"

type Snapshot struct {
	Version   string       `json:"version"`
	ID        string       `json:"id"`
	Form      string       `json:"form"`
	State     State        `json:"state"`
	Record    Record       `json:"record"`
	AskFor    []string     `json:"ask_for,omitempty"`
	Errors    []FieldError `json:"errors,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
