package cache

import (
	"context"
	"testing"

	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	gamesessionmock "github.com/riskibarqy/matchbet/internal/mocks/domain/gamesession"
	basecache "github.com/riskibarqy/matchbet/internal/platform/cache"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_CachesListUntilWrite(t *testing.T) {
	ctx := context.Background()
	next := gamesessionmock.NewRepository(t)
	repo := NewSessionRepository(next, basecache.NewStore[[]gamesession.Summary](0))

	first := []gamesession.Summary{{ID: "s1", Name: "Derby"}}
	next.On("List", mock.Anything).Return(first, nil).Once()

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, got)

	got[0].Name = "mutated"
	got, err = repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Derby", got[0].Name)

	next.On("Save", mock.Anything, mock.AnythingOfType("gamesession.Snapshot")).Return(nil).Once()
	require.NoError(t, repo.Save(ctx, gamesession.Snapshot{ID: "s2"}))

	second := []gamesession.Summary{{ID: "s1"}, {ID: "s2"}}
	next.On("List", mock.Anything).Return(second, nil).Once()
	got, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	next.On("Delete", mock.Anything, "s2").Return(gamesession.ErrNotFound).Once()
	require.ErrorIs(t, repo.Delete(ctx, "s2"), gamesession.ErrNotFound)

	next.On("List", mock.Anything).Return(first, nil).Once()
	got, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSessionRepository_GetPassesThrough(t *testing.T) {
	ctx := context.Background()
	next := gamesessionmock.NewRepository(t)
	repo := NewSessionRepository(next, basecache.NewStore[[]gamesession.Summary](0))

	next.On("Get", mock.Anything, "s1").Return(gamesession.Snapshot{ID: "s1"}, nil).Twice()
	for range 2 {
		snap, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "s1", snap.ID)
	}
}
