package gamesession

import "context"

// Repository persists session snapshots. Get returns ErrNotFound for unknown ids.
type Repository interface {
	Save(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, sessionID string) error
}
