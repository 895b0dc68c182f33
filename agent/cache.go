package agent

import (
	"context"
	"sync"
	"time"
)

// Cache is the key-value backend behind SnapshotStore and HistoryStore.
// Implementations must be safe for concurrent use.
type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type memoryEntry[S any] struct {
	val     S
	expires time.Time
}

// MemoryCache keeps values in process. Like RedisCache, a positive ttl expires an entry that
// has not been written for that long; expired entries are dropped lazily.
type MemoryCache[S any] struct {
	mu  sync.Mutex
	m   map[string]memoryEntry[S]
	ttl time.Duration
	now func() time.Time
}

func NewMemoryCache[S any](ttl time.Duration) *MemoryCache[S] {
	return &MemoryCache[S]{
		m:   map[string]memoryEntry[S]{},
		ttl: ttl,
		now: time.Now,
	}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry[S]{val: val}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.m[key] = e
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	return e.val, ok, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok, nil
}

// Len counts the entries that have not expired.
func (m *MemoryCache[S]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.m {
		if _, ok := m.lookup(key); ok {
			n++
		}
	}
	return n
}

// lookup must be called with mu held.
func (m *MemoryCache[S]) lookup(key string) (memoryEntry[S], bool) {
	e, ok := m.m[key]
	if !ok {
		return memoryEntry[S]{}, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.m, key)
		return memoryEntry[S]{}, false
	}
	return e, true
}

var _ Cache[int] = (*MemoryCache[int])(nil)
