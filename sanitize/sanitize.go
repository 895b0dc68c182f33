// Package sanitize removes placeholder values a model writes when it has nothing to say
// about a field.
package sanitize

import (
	"strings"

	"github.com/tbxark/formfiller/types"
)

// DefaultPlaceholders are compared case-insensitively after trimming. An explicit nil
// value is always treated as a placeholder.
var DefaultPlaceholders = []string{
	"",
	"none",
	"null",
	"nil",
	"unknown",
	"missing",
	"n/a",
	"na",
	"not applicable",
	"not provided",
	"lower-case",
}

type Sanitizer struct {
	placeholders map[string]struct{}
}

func Default() *Sanitizer {
	return New(DefaultPlaceholders...)
}

func New(placeholders ...string) *Sanitizer {
	s := &Sanitizer{placeholders: make(map[string]struct{}, len(placeholders))}
	for _, p := range placeholders {
		s.placeholders[normalize(p)] = struct{}{}
	}
	return s
}

// WithPlaceholders returns a copy of s that also treats extra as placeholders.
func (s *Sanitizer) WithPlaceholders(extra ...string) *Sanitizer {
	out := &Sanitizer{placeholders: make(map[string]struct{}, len(s.placeholders)+len(extra))}
	for p := range s.placeholders {
		out.placeholders[p] = struct{}{}
	}
	for _, p := range extra {
		out.placeholders[normalize(p)] = struct{}{}
	}
	return out
}

// IsPlaceholder reports whether v carries no information.
func (s *Sanitizer) IsPlaceholder(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		_, ok := s.placeholders[normalize(val)]
		return ok
	default:
		return false
	}
}

// Sanitize returns a new record holding only the entries of record with real values.
func (s *Sanitizer) Sanitize(record types.Record) types.Record {
	out := make(types.Record, len(record))
	for k, v := range record {
		if s.IsPlaceholder(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
