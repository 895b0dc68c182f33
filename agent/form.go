package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"
	"github.com/tbxark/formfiller/dialogue"
	"github.com/tbxark/formfiller/extract"
	"github.com/tbxark/formfiller/intent"
	"github.com/tbxark/formfiller/patch"
	"github.com/tbxark/formfiller/sanitize"
	"github.com/tbxark/formfiller/types"
)

type options struct {
	id         string
	extractor  extract.Extractor
	classifier intent.Classifier
	sanitizer  *sanitize.Sanitizer
	composer   dialogue.Composer
	window     int
}

type Option func(*options)

func WithExtractor(e extract.Extractor) Option {
	return func(o *options) {
		o.extractor = e
	}
}

func WithClassifier(c intent.Classifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

func WithSanitizer(s *sanitize.Sanitizer) Option {
	return func(o *options) {
		o.sanitizer = s
	}
}

func WithComposer(c dialogue.Composer) Option {
	return func(o *options) {
		o.composer = c
	}
}

// WithHistoryWindow sets how many prior turns the extractor sees.
func WithHistoryWindow(n int) Option {
	return func(o *options) {
		o.window = n
	}
}

func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		sanitizer: sanitize.Default(),
		composer:  dialogue.RecapComposer{},
		window:    types.DefaultHistoryWindow,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.extractor == nil {
		return o, errors.New("extractor is required")
	}
	if o.classifier == nil {
		return o, errors.New("classifier is required")
	}
	if o.sanitizer == nil {
		o.sanitizer = sanitize.Default()
	}
	if o.composer == nil {
		o.composer = dialogue.RecapComposer{}
	}
	if o.window <= 0 {
		o.window = types.DefaultHistoryWindow
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	return o, nil
}

type formState struct {
	state  types.State
	record types.Record
	askFor []string
	errors []types.FieldError
}

func (s formState) clone() formState {
	return formState{
		state:  s.state,
		record: s.record.Clone(),
		askFor: slices.Clone(s.askFor),
		errors: slices.Clone(s.errors),
	}
}

// Form is one instance of a form being filled in a conversation. It is not safe for
// concurrent use; Sessions serializes turns per conversation.
type Form[R any] struct {
	def  Definition[R]
	opts options

	cur       formState
	updatedAt time.Time
}

func NewForm[R any](def Definition[R], opts ...Option) (*Form[R], error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create form %s: %w", def.Name, err)
	}
	return &Form[R]{
		def:  def,
		opts: o,
		cur: formState{
			state:  types.StateIncomplete,
			record: types.Record{},
			askFor: []string{},
			errors: []types.FieldError{},
		},
		updatedAt: time.Now(),
	}, nil
}

// NewModelForm wires the text-completion extractor and intent classifier to chatModel.
// Options passed in opts take precedence.
func NewModelForm[R any](def Definition[R], chatModel model.BaseChatModel, opts ...Option) (*Form[R], error) {
	base := []Option{
		WithExtractor(extract.NewModelExtractor(chatModel)),
		WithClassifier(intent.NewModelClassifier(chatModel)),
	}
	return NewForm(def, append(base, opts...)...)
}

func (f *Form[R]) ID() string {
	return f.opts.id
}

func (f *Form[R]) Definition() Definition[R] {
	return f.def
}

func (f *Form[R]) State() types.State {
	return f.cur.state
}

func (f *Form[R]) Record() types.Record {
	return f.cur.record.Clone()
}

func (f *Form[R]) AskFor() []string {
	return slices.Clone(f.cur.askFor)
}

func (f *Form[R]) Errors() []types.FieldError {
	return slices.Clone(f.cur.errors)
}

// Next runs one turn of the dialogue. A failed model call leaves the form unchanged so the
// turn can be retried. A failed submission is returned after the form has closed.
func (f *Form[R]) Next(ctx context.Context, conv *types.Conversation) (*Response[R], error) {
	ctx = callbacks.EnsureRunInfo(ctx, f.def.Name, "Form")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"id":    f.opts.id,
		"state": string(f.cur.state),
		"input": conv,
	})

	defer func() {
		if r := recover(); r != nil {
			callbacks.OnError(ctx, fmt.Errorf("panic in Form.Next: %v", r))
			panic(r)
		}
	}()

	resp, err := f.next(ctx, conv)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, err
	}

	callbacks.OnEnd(ctx, map[string]any{
		"id":        f.opts.id,
		"state":     string(resp.State),
		"submitted": resp.Submitted,
	})
	return resp, nil
}

func (f *Form[R]) next(ctx context.Context, conv *types.Conversation) (*Response[R], error) {
	if f.cur.state == types.StateClosed {
		return f.response("", false, *new(R)), nil
	}
	if conv == nil {
		return nil, ErrNoInput
	}

	w := f.cur.clone()

	exit, err := f.opts.classifier.Classify(ctx, intent.Exit, conv.Utterance)
	if err != nil {
		return nil, fmt.Errorf("failed to classify exit intent: %w", err)
	}
	if exit {
		slog.Info("Form closed by user", "form", f.def.Name, "id", f.opts.id)
		w.state = types.StateClosed
		f.commit(w)
		return f.response("", false, *new(R)), nil
	}

	if w.state == types.StateWaitConfirm {
		confirmed, cErr := f.opts.classifier.Classify(ctx, intent.Confirm, conv.Utterance)
		if cErr != nil {
			return nil, fmt.Errorf("failed to classify confirmation: %w", cErr)
		}
		if confirmed {
			w.state = types.StateClosed
			f.commit(w)
			return f.submit(ctx)
		}
		slog.Debug("Confirmation declined", "form", f.def.Name, "id", f.opts.id)
		w.state = types.StateIncomplete
	}

	if w.state == types.StateIncomplete {
		if _, uErr := f.update(ctx, &w, conv); uErr != nil {
			return nil, uErr
		}
	}

	if w.state == types.StateComplete {
		if !f.def.RequiresConfirmation {
			w.state = types.StateClosed
			f.commit(w)
			return f.submit(ctx)
		}
		w.state = types.StateWaitConfirm
	}

	msg, err := f.opts.composer.Compose(ctx, &dialogue.Recap{
		Form:      f.def.Name,
		Fields:    f.def.Fields,
		State:     w.state,
		Record:    w.record.Clone(),
		AskFor:    slices.Clone(w.askFor),
		Errors:    slices.Clone(w.errors),
		Utterance: conv.Utterance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compose message: %w", err)
	}
	f.commit(w)
	return f.response(msg, false, *new(R)), nil
}

// update runs extraction, sanitization, merge and validation on w and returns the
// fields whose value changed.
func (f *Form[R]) update(ctx context.Context, w *formState, conv *types.Conversation) ([]string, error) {
	slog.Debug("Extracting fields", "form", f.def.Name, "id", f.opts.id)
	candidate, err := f.opts.extractor.Extract(ctx, &extract.Request{
		Fields:       f.def.Fields,
		Record:       w.record.Clone(),
		Conversation: conv,
		Window:       f.opts.window,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract fields: %w", err)
	}
	return f.apply(w, candidate)
}

func (f *Form[R]) apply(w *formState, candidate types.Record) ([]string, error) {
	if unknown := patch.Unknown(candidate, f.def.Fields.Names()); len(unknown) > 0 {
		slog.Debug("Dropping unknown fields", "form", f.def.Name, "fields", unknown)
	}
	clean := f.opts.sanitizer.Sanitize(candidate)
	merged, err := patch.Merge(w.record, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to merge record: %w", err)
	}
	res := f.def.Fields.Validate(merged)
	changed, err := patch.Changed(w.record, res.Record)
	if err != nil {
		return nil, err
	}
	slog.Debug("Validated record", "form", f.def.Name, "changed", changed, "ask_for", res.AskFor, "errors", len(res.Errors), "state", res.State)

	w.record = res.Record
	w.askFor = res.AskFor
	w.errors = res.Errors
	w.state = res.State
	return changed, nil
}

func (f *Form[R]) submit(ctx context.Context) (*Response[R], error) {
	var result R
	if f.def.Submit != nil {
		var err error
		result, err = f.def.Submit(ctx, f.cur.record.Clone())
		if err != nil {
			slog.Error("Form submission failed", "form", f.def.Name, "id", f.opts.id, "err", err)
			return nil, fmt.Errorf("failed to submit form %s: %w", f.def.Name, err)
		}
	}
	slog.Info("Form submitted", "form", f.def.Name, "id", f.opts.id)
	return f.response("", true, result), nil
}

// Prefill seeds the record with known values, e.g. from a user profile. The values go
// through the same sanitize, merge and validate steps as extracted ones. The form is never
// submitted from here; a complete form is submitted or confirmed on the next turn.
func (f *Form[R]) Prefill(ctx context.Context, record types.Record) (*Response[R], error) {
	if f.cur.state == types.StateClosed {
		return nil, ErrFormClosed
	}
	w := f.cur.clone()
	if _, err := f.apply(&w, record); err != nil {
		return nil, err
	}
	f.commit(w)
	return f.response("", false, *new(R)), nil
}

func (f *Form[R]) commit(w formState) {
	f.cur = w
	f.updatedAt = time.Now()
}

func (f *Form[R]) response(msg string, submitted bool, result R) *Response[R] {
	return &Response[R]{
		Message:   msg,
		State:     f.cur.state,
		Record:    f.cur.record.Clone(),
		AskFor:    slices.Clone(f.cur.askFor),
		Errors:    slices.Clone(f.cur.errors),
		Submitted: submitted,
		Result:    result,
		Closed:    f.cur.state == types.StateClosed,
	}
}

// Snapshot captures the form so it can be persisted and restored later.
func (f *Form[R]) Snapshot() types.Snapshot {
	return types.Snapshot{
		Version:   types.SnapshotVersion,
		ID:        f.opts.id,
		Form:      f.def.Name,
		State:     f.cur.state,
		Record:    f.cur.record.Clone(),
		AskFor:    slices.Clone(f.cur.askFor),
		Errors:    slices.Clone(f.cur.errors),
		UpdatedAt: f.updatedAt,
	}
}

// RestoreForm rebuilds a form from a snapshot taken with the same definition. The record is
// revalidated so values decoded from storage come back in their normalized form; AskFor and
// Errors are restored as they were.
func RestoreForm[R any](def Definition[R], snap types.Snapshot, opts ...Option) (*Form[R], error) {
	if err := checkSnapshot(def.Name, snap); err != nil {
		return nil, err
	}
	f, err := NewForm(def, append(slices.Clone(opts), WithID(snap.ID))...)
	if err != nil {
		return nil, err
	}
	f.cur = formState{
		state:  snap.State,
		record: def.Fields.Validate(snap.Record).Record,
		askFor: append([]string{}, snap.AskFor...),
		errors: append([]types.FieldError{}, snap.Errors...),
	}
	if !snap.UpdatedAt.IsZero() {
		f.updatedAt = snap.UpdatedAt
	}
	return f, nil
}
