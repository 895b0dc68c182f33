package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/tbxark/formfiller/types"
)

type sessionKeyContext struct{}

const DefaultSessionKey = "default"

// WithSessionKey sets the key that routes a call to its session.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// SessionKeyFromContext gets the session key from the context.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyContext{}).(string)
	return key, ok
}

func sessionKeyOrDefault(ctx context.Context) string {
	if key, ok := SessionKeyFromContext(ctx); ok && key != "" {
		return key
	}
	return DefaultSessionKey
}

// Sessions keeps one form per session key and persists it as a snapshot between turns.
// Turns of the same session are serialized; different sessions run concurrently.
type Sessions[R any] struct {
	def   Definition[R]
	opts  []Option
	store *SnapshotStore
	locks keyedMutex
}

// NewSessions uses an in-memory cache without expiry when cache is nil.
func NewSessions[R any](def Definition[R], cache Cache[types.Snapshot], opts ...Option) (*Sessions[R], error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	if _, err := buildOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to create sessions for %s: %w", def.Name, err)
	}
	if cache == nil {
		cache = NewMemoryCache[types.Snapshot](0)
	}
	return &Sessions[R]{
		def:   def,
		opts:  opts,
		store: NewSnapshotStore(cache, def.Name),
	}, nil
}

func (s *Sessions[R]) Definition() Definition[R] {
	return s.def
}

// Form loads the form of the current session, or a fresh one when none is stored.
func (s *Sessions[R]) Form(ctx context.Context) (*Form[R], error) {
	snap, ok, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load form: %w", err)
	}
	if !ok {
		return NewForm(s.def, s.opts...)
	}
	return RestoreForm(s.def, snap, s.opts...)
}

// Next runs one turn for the session in ctx. The form is saved after every turn that changed
// it, including a failed submission, which leaves it closed. A closed form stays stored until
// Reset.
func (s *Sessions[R]) Next(ctx context.Context, conv *types.Conversation) (*Response[R], error) {
	key := sessionKeyOrDefault(ctx)
	unlock := s.locks.lock(key)
	defer unlock()

	form, err := s.Form(ctx)
	if err != nil {
		return nil, err
	}
	wasClosed := form.State() == types.StateClosed
	resp, err := form.Next(ctx, conv)
	if err != nil {
		if !wasClosed && form.State() == types.StateClosed {
			if sErr := s.store.Save(ctx, form.Snapshot()); sErr != nil {
				return nil, fmt.Errorf("%w (failed to save form: %v)", err, sErr)
			}
		}
		return nil, err
	}
	if wasClosed {
		return resp, nil
	}
	if err := s.store.Save(ctx, form.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to save form: %w", err)
	}
	return resp, nil
}

func (s *Sessions[R]) Prefill(ctx context.Context, record types.Record) (*Response[R], error) {
	key := sessionKeyOrDefault(ctx)
	unlock := s.locks.lock(key)
	defer unlock()

	form, err := s.Form(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := form.Prefill(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, form.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to save form: %w", err)
	}
	return resp, nil
}

// Reset drops the stored form so the next turn starts a new one.
func (s *Sessions[R]) Reset(ctx context.Context) error {
	key := sessionKeyOrDefault(ctx)
	unlock := s.locks.lock(key)
	defer unlock()
	return s.store.Delete(ctx)
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
