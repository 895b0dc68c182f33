// Package dialogue composes the message shown to the user after each turn.
package dialogue

import (
	"context"

	"github.com/tbxark/formfiller/fields"
	"github.com/tbxark/formfiller/types"
)

// Recap is everything a composer may show about the form after a turn.
type Recap struct {
	Form      string
	Fields    *fields.Descriptor
	State     types.State
	Record    types.Record
	AskFor    []string
	Errors    []types.FieldError
	Utterance string
}

// Composer writes the reply for the user from a recap.
type Composer interface {
	Compose(ctx context.Context, recap *Recap) (string, error)
}
