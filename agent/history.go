package agent

import (
	"context"
	"slices"

	"github.com/cloudwego/eino/schema"
)

// Trimmer bounds the history kept for a session.
type Trimmer interface {
	Trim(history []*schema.Message) []*schema.Message
}

// KeepSystemLastNTrimmer keeps every system message and the last N other messages.
// When N <= 0 only system messages survive. Nil entries are dropped.
type KeepSystemLastNTrimmer struct {
	N int
}

func (t KeepSystemLastNTrimmer) Trim(history []*schema.Message) []*schema.Message {
	keep := max(t.N, 0)
	out := make([]*schema.Message, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		switch {
		case m == nil:
		case m.Role == schema.System:
			out = append(out, m)
		case keep > 0:
			out = append(out, m)
			keep--
		}
	}
	slices.Reverse(out)
	return out
}

// HistoryReadWriter is implemented by HistoryStore.
type HistoryReadWriter interface {
	Load(ctx context.Context) ([]*schema.Message, error)
	Save(ctx context.Context, history []*schema.Message) error
	Clear(ctx context.Context) error

	// Append loads history, appends msgs skipping consecutive duplicates, trims, then saves.
	// It returns the saved history, ready to be passed to adk.AgentInput.
	Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error)
}

// HistoryStore keeps the message history of each session under "formfiller:history:<session>".
type HistoryStore struct {
	cache   Cache[[]*schema.Message]
	trimmer Trimmer
}

func NewHistoryStore(cache Cache[[]*schema.Message], trimmer Trimmer) *HistoryStore {
	return &HistoryStore{
		cache:   cache,
		trimmer: trimmer,
	}
}

func NewMemoryHistoryStore(trimmer Trimmer) *HistoryStore {
	return NewHistoryStore(NewMemoryCache[[]*schema.Message](0), trimmer)
}

func historyKey(ctx context.Context) string {
	session := sessionKeyOrDefault(ctx)
	return "formfiller:history:" + session
}

func (s *HistoryStore) Load(ctx context.Context) ([]*schema.Message, error) {
	hist, ok, err := s.cache.Get(ctx, historyKey(ctx))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return hist, nil
}

func (s *HistoryStore) Save(ctx context.Context, history []*schema.Message) error {
	history = normalizeHistory(history)
	history = s.trim(history)
	return s.cache.Set(ctx, historyKey(ctx), history)
}

func (s *HistoryStore) Clear(ctx context.Context) error {
	return s.cache.Del(ctx, historyKey(ctx))
}

func (s *HistoryStore) Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error) {
	hist, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	hist = s.trim(normalizeHistory(appendHistory(hist, msgs...)))
	if err := s.cache.Set(ctx, historyKey(ctx), hist); err != nil {
		return nil, err
	}
	return hist, nil
}

func (s *HistoryStore) trim(history []*schema.Message) []*schema.Message {
	if s == nil || s.trimmer == nil {
		return history
	}
	return s.trimmer.Trim(history)
}

func appendHistory(history []*schema.Message, msgs ...*schema.Message) []*schema.Message {
	if len(msgs) == 0 {
		return history
	}
	out := history
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last != nil && last.Role == msg.Role && last.Content == msg.Content {
				continue
			}
		}
		out = append(out, msg)
	}
	return out
}

func normalizeHistory(history []*schema.Message) []*schema.Message {
	if len(history) == 0 {
		return history
	}
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

var _ HistoryReadWriter = (*HistoryStore)(nil)
