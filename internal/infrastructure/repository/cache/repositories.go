package cache

import (
	"context"

	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	basecache "github.com/riskibarqy/matchbet/internal/platform/cache"
)

const sessionListKey = "session:list"

// SessionRepository caches the session listing in front of a slower store. Writes go straight
// through and drop the cached listing; single-session reads are never cached.
type SessionRepository struct {
	next  gamesession.Repository
	cache *basecache.Store[[]gamesession.Summary]
}

var _ gamesession.Repository = (*SessionRepository)(nil)

func NewSessionRepository(next gamesession.Repository, cache *basecache.Store[[]gamesession.Summary]) *SessionRepository {
	return &SessionRepository{next: next, cache: cache}
}

func (r *SessionRepository) Save(ctx context.Context, snap gamesession.Snapshot) error {
	err := r.next.Save(ctx, snap)
	r.cache.Delete(ctx, sessionListKey)
	return err
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (gamesession.Snapshot, error) {
	return r.next.Get(ctx, sessionID)
}

func (r *SessionRepository) List(ctx context.Context) ([]gamesession.Summary, error) {
	items, err := r.cache.GetOrLoad(ctx, sessionListKey, func(ctx context.Context) ([]gamesession.Summary, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]gamesession.Summary(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]gamesession.Summary(nil), items...), nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	err := r.next.Delete(ctx, sessionID)
	r.cache.Delete(ctx, sessionListKey)
	return err
}
