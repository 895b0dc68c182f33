package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tbxark/formfiller/types"
)

// SnapshotStore persists the snapshot of one form type per session, under
// "formfiller:form:<form>:<session>".
type SnapshotStore struct {
	cache Cache[types.Snapshot]
	form  string
}

func NewSnapshotStore(cache Cache[types.Snapshot], form string) *SnapshotStore {
	return &SnapshotStore{cache: cache, form: form}
}

func (s *SnapshotStore) key(ctx context.Context) string {
	session := sessionKeyOrDefault(ctx)
	return "formfiller:form:" + s.form + ":" + session
}

// Load returns the stored snapshot of the session in ctx. A snapshot that can no longer be
// restored, written by another version or another form, is deleted and reported as absent.
func (s *SnapshotStore) Load(ctx context.Context) (types.Snapshot, bool, error) {
	key := s.key(ctx)
	snap, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return types.Snapshot{}, false, err
	}
	if err := checkSnapshot(s.form, snap); err != nil {
		slog.Warn("Discarding stored form", "key", key, "err", err)
		if dErr := s.cache.Del(ctx, key); dErr != nil {
			return types.Snapshot{}, false, errors.Join(err, dErr)
		}
		return types.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Save rejects snapshots of other forms so one store never mixes form types.
func (s *SnapshotStore) Save(ctx context.Context, snap types.Snapshot) error {
	if err := checkSnapshot(s.form, snap); err != nil {
		return err
	}
	return s.cache.Set(ctx, s.key(ctx), snap)
}

func (s *SnapshotStore) Delete(ctx context.Context) error {
	return s.cache.Del(ctx, s.key(ctx))
}

func (s *SnapshotStore) Exists(ctx context.Context) (bool, error) {
	return s.cache.Exists(ctx, s.key(ctx))
}

func checkSnapshot(form string, snap types.Snapshot) error {
	if snap.Version != types.SnapshotVersion {
		return fmt.Errorf("%w: version %q", ErrIncompatibleSnapshot, snap.Version)
	}
	if snap.Form != form {
		return fmt.Errorf("%w: snapshot of %q restored into %q", ErrIncompatibleSnapshot, snap.Form, form)
	}
	switch snap.State {
	case types.StateIncomplete, types.StateComplete, types.StateWaitConfirm, types.StateClosed:
		return nil
	default:
		return fmt.Errorf("%w: unknown state %q", ErrIncompatibleSnapshot, snap.State)
	}
}
