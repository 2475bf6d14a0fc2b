package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
)

func TestSessionRepository_SaveGetListDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 5, 16, 15, 0, 0, 0, time.UTC)
	repo := NewSessionRepository(SeedDemoSession(now))

	newer := gamesession.Snapshot{ID: "s-2", Name: "Cup final", Phase: gamesession.PhaseSetup, UpdatedAt: now.Add(time.Hour)}
	if err := repo.Save(ctx, newer); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "s-2" || list[1].ID != DemoSessionID {
		t.Fatalf("unexpected list order: %+v", list)
	}

	got, err := repo.Get(ctx, DemoSessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Players[0].Name = "mutated"
	again, _ := repo.Get(ctx, DemoSessionID)
	if again.Players[0].Name == "mutated" {
		t.Fatalf("repository must return copies")
	}

	if err := repo.Delete(ctx, "s-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "s-2"); !errors.Is(err, gamesession.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "s-2"); !errors.Is(err, gamesession.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSeedDemoSessionRestores(t *testing.T) {
	t.Parallel()

	s, err := gamesession.Restore(SeedDemoSession(time.Now()))
	if err != nil {
		t.Fatalf("demo seed must be a valid snapshot: %v", err)
	}
	if len(s.AvailablePlayers()) != 12 || len(s.Bets()) != 6 {
		t.Fatalf("unexpected demo content: players=%d bets=%d", len(s.AvailablePlayers()), len(s.Bets()))
	}
}
