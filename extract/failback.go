package extract

import (
	"context"
	"fmt"

	"github.com/tbxark/formfiller/types"
)

// FailbackExtractor tries its extractors in order and returns the first successful result.
type FailbackExtractor struct {
	extractors []Extractor
}

// NewFailbackExtractor returns an empty record when no extractor is given.
func NewFailbackExtractor(extractors ...Extractor) *FailbackExtractor {
	return &FailbackExtractor{extractors: extractors}
}

func (e *FailbackExtractor) Extract(ctx context.Context, req *Request) (types.Record, error) {
	var lastErr error
	for _, extractor := range e.extractors {
		out, err := extractor.Extract(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return types.Record{}, nil
	}
	return nil, fmt.Errorf("all extractors failed: %w", lastErr)
}
