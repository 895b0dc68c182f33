// Package agent runs the form-filling state machine and the session plumbing around it.
package agent

import (
	"context"
	"errors"

	"github.com/tbxark/formfiller/fields"
	"github.com/tbxark/formfiller/types"
)

var (
	// ErrFormClosed is returned by operations that would mutate a closed form.
	ErrFormClosed = errors.New("form is closed")
	// ErrNoInput is returned when a turn carries no conversation.
	ErrNoInput = errors.New("no conversation input")
	// ErrIncompatibleSnapshot is returned when a snapshot cannot be restored into a definition.
	ErrIncompatibleSnapshot = errors.New("incompatible form snapshot")
	ErrInvalidDefinition    = errors.New("invalid form definition")
)

// SubmitFunc receives the final record exactly once, when the form closes successfully.
type SubmitFunc[R any] func(ctx context.Context, record types.Record) (R, error)

// Definition describes one form type. It is shared by every instance of the form.
type Definition[R any] struct {
	Name        string
	Description string
	Fields      *fields.Descriptor
	// RequiresConfirmation routes a complete form through wait_confirm before submitting.
	RequiresConfirmation bool
	Submit               SubmitFunc[R]
}

func (d Definition[R]) validate() error {
	if d.Name == "" {
		return errors.Join(ErrInvalidDefinition, errors.New("name is empty"))
	}
	if d.Fields == nil || d.Fields.Len() == 0 {
		return errors.Join(ErrInvalidDefinition, errors.New("no fields declared"))
	}
	return nil
}

// Response is the outcome of one turn.
type Response[R any] struct {
	// Message is the recap shown to the user. Empty when the form closed.
	Message string             `json:"message,omitempty"`
	State   types.State        `json:"state"`
	Record  types.Record       `json:"record"`
	AskFor  []string           `json:"ask_for,omitempty"`
	Errors  []types.FieldError `json:"errors,omitempty"`
	// Submitted is set on the turn that invoked the submission hook.
	Submitted bool `json:"submitted,omitempty"`
	Result    R    `json:"result,omitempty"`
	Closed    bool `json:"closed,omitempty"`
}
