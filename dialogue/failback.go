package dialogue

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoComposer is returned by a FailbackComposer built without composers.
var ErrNoComposer = errors.New("no composer configured")

// FailbackComposer returns the first message produced by its composers, tried in order.
type FailbackComposer struct {
	composers []Composer
}

// NewFailbackComposer usually ends with a RecapComposer, which never fails.
func NewFailbackComposer(composers ...Composer) *FailbackComposer {
	return &FailbackComposer{composers: composers}
}

func (c *FailbackComposer) Compose(ctx context.Context, recap *Recap) (string, error) {
	var lastErr error
	for _, composer := range c.composers {
		msg, err := composer.Compose(ctx, recap)
		if err == nil {
			return msg, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return "", ErrNoComposer
	}
	return "", fmt.Errorf("all composers failed: %w", lastErr)
}
