package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tbxark/formfiller/types"
)

const (
	separator            = "\n - "
	DefaultConfirmPrompt = "\n --> Confirm? Yes or no?"
)

// RecapComposer renders the record, the missing and the invalid fields as plain text.
// It never fails and has no side effects.
type RecapComposer struct {
	// ConfirmPrompt is appended while waiting for confirmation. Empty means DefaultConfirmPrompt.
	ConfirmPrompt string
}

func (c RecapComposer) Compose(ctx context.Context, recap *Recap) (string, error) {
	return c.Render(recap), nil
}

func (c RecapComposer) Render(recap *Recap) string {
	var missing string
	if len(recap.AskFor) > 0 {
		missing = "\nMissing fields:" + separator + strings.Join(recap.AskFor, separator)
	}
	var invalid string
	if len(recap.Errors) > 0 {
		invalid = "\nInvalid fields:" + separator + strings.Join(types.FormatFieldErrors(recap.Errors), separator)
	}

	out := fmt.Sprintf("Info until now:\n\n```json\n%s\n```\n%s\n%s\n", prettyRecord(recap.Record), missing, invalid)

	if recap.State == types.StateWaitConfirm {
		prompt := c.ConfirmPrompt
		if prompt == "" {
			prompt = DefaultConfirmPrompt
		}
		out += prompt
	}
	return out
}

func prettyRecord(record types.Record) string {
	b, err := sonic.ConfigStd.MarshalIndent(record.Clone(), "", "    ")
	if err != nil {
		return fmt.Sprintf("%v", record)
	}
	return string(b)
}
