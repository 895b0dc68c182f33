package fields

import (
	"github.com/tbxark/formfiller/types"
)

// Result is the outcome of one validation pass.
type Result struct {
	Record types.Record
	AskFor []string
	Errors []types.FieldError
	State  types.State
}

// Complete reports whether nothing is missing or invalid.
func (r Result) Complete() bool {
	return len(r.AskFor) == 0 && len(r.Errors) == 0
}

// Validate checks candidate against the descriptor. Missing required fields go to AskFor,
// values that fail coercion or constraints go to Errors and are dropped from the returned
// record, unknown keys are dropped. Fields are visited in declaration order so the result
// is deterministic. The candidate is not modified.
func (d *Descriptor) Validate(candidate types.Record) Result {
	res := Result{
		Record: make(types.Record, len(d.fields)),
		AskFor: make([]string, 0),
		Errors: make([]types.FieldError, 0),
	}
	for _, f := range d.fields {
		raw, ok := candidate[f.Name]
		if !ok || raw == nil {
			switch {
			case f.Default != nil:
				res.Record[f.Name] = f.Default
			case f.Required:
				res.AskFor = append(res.AskFor, f.Name)
			}
			continue
		}
		v, msg := f.coerce(raw)
		if msg != "" {
			res.Errors = append(res.Errors, types.FieldError{Field: f.Name, Message: msg})
			continue
		}
		res.Record[f.Name] = v
	}
	res.State = types.StateIncomplete
	if res.Complete() {
		res.State = types.StateComplete
	}
	return res
}
