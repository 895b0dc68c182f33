// Package extract turns a conversation turn into candidate field values with a language model.
package extract

import (
	"context"

	"github.com/tbxark/formfiller/fields"
	"github.com/tbxark/formfiller/types"
)

// Request carries what an extractor needs for one turn.
type Request struct {
	Fields       *fields.Descriptor
	Record       types.Record
	Conversation *types.Conversation
	// Window is the number of prior turns shown to the model. Zero means types.DefaultHistoryWindow.
	Window int
}

func (r *Request) window() int {
	if r.Window <= 0 {
		return types.DefaultHistoryWindow
	}
	return r.Window
}

func (r *Request) utterance() string {
	if r.Conversation == nil {
		return ""
	}
	return r.Conversation.Utterance
}

// Extractor returns the field values it could read from the conversation. A reply it cannot
// parse yields an empty record, not an error; errors are reserved for failed model calls.
type Extractor interface {
	Extract(ctx context.Context, req *Request) (types.Record, error)
}
