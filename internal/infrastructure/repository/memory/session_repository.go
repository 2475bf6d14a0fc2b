package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
)

type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]gamesession.Snapshot
}

func NewSessionRepository(seed ...gamesession.Snapshot) *SessionRepository {
	items := make(map[string]gamesession.Snapshot, len(seed))
	for _, snap := range seed {
		items[snap.ID] = snap.Clone()
	}
	return &SessionRepository{items: items}
}

func (r *SessionRepository) Save(_ context.Context, snap gamesession.Snapshot) error {
	if snap.ID == "" {
		return fmt.Errorf("session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[snap.ID] = snap.Clone()
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (gamesession.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.items[sessionID]
	if !ok {
		return gamesession.Snapshot{}, fmt.Errorf("%w: %s", gamesession.ErrNotFound, sessionID)
	}
	return snap.Clone(), nil
}

// List returns summaries ordered by most recent update first.
func (r *SessionRepository) List(_ context.Context) ([]gamesession.Summary, error) {
	r.mu.RLock()
	out := make([]gamesession.Summary, 0, len(r.items))
	for _, snap := range r.items {
		out = append(out, snap.Summary())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[sessionID]; !ok {
		return fmt.Errorf("%w: %s", gamesession.ErrNotFound, sessionID)
	}
	delete(r.items, sessionID)
	return nil
}
