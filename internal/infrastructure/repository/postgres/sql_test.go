package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/infrastructure/repository/memory"
	"github.com/shopspring/decimal"
)

func playedDemoSnapshot(t *testing.T) gamesession.Snapshot {
	t.Helper()

	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	session, err := gamesession.Restore(memory.SeedDemoSession(now))
	if err != nil {
		t.Fatalf("restore demo session: %v", err)
	}

	alice, err := session.AddParticipant("Alice")
	if err != nil {
		t.Fatalf("add participant: %v", err)
	}
	if _, err := session.AddParticipant("Bob"); err != nil {
		t.Fatalf("add participant: %v", err)
	}
	if err := session.AssignPlayersRandomly(42); err != nil {
		t.Fatalf("assign: %v", err)
	}

	active := session.Participants()[0].ActivePlayers
	if len(active) == 0 {
		t.Fatalf("expected %s to own players", alice.Name)
	}
	if _, err := session.RecordEvent(active[0], bet.EventGoal, 12); err != nil {
		t.Fatalf("record event: %v", err)
	}
	return session.Snapshot()
}

func TestSessionDocumentRoundTrip(t *testing.T) {
	snap := playedDemoSnapshot(t)

	raw, err := encodeSessionDocument(snap)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeSessionDocument(raw, documentVersion)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	restored, err := gamesession.Restore(decoded)
	if err != nil {
		t.Fatalf("restore decoded document: %v", err)
	}
	if restored.LedgerLen() != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", restored.LedgerLen())
	}

	for i, p := range restored.Participants() {
		want := snap.Participants[i].Balance
		if !p.Balance.Equal(want) {
			t.Fatalf("participant %s balance = %s, want %s", p.ID, p.Balance, want)
		}
	}
	if !restored.TotalBalance().Equal(decimal.Zero) {
		t.Fatalf("expected zero-sum balances, got %s", restored.TotalBalance())
	}
}

func TestDecodeSessionDocumentRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		version int
	}{
		{name: "unknown column version", raw: `{"version":1,"session":{}}`, version: 2},
		{name: "malformed json", raw: `{"version":1,"session":`, version: 1},
		{name: "embedded version mismatch", raw: `{"version":7,"session":{}}`, version: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeSessionDocument(tc.raw, tc.version)
			if !errors.Is(err, gamesession.ErrCorruptSnapshot) {
				t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}

func TestNewSessionRowUsesSummaryColumns(t *testing.T) {
	snap := playedDemoSnapshot(t)
	row := newSessionRow(snap, "{}")

	if row.PublicID != snap.ID || row.Phase != string(gamesession.PhaseActive) {
		t.Fatalf("unexpected row header %+v", row)
	}
	if row.ParticipantCount != 2 || row.EntryCount != 1 {
		t.Fatalf("unexpected counts participants=%d entries=%d", row.ParticipantCount, row.EntryCount)
	}
	if row.DocumentVersion != documentVersion {
		t.Fatalf("expected document version %d, got %d", documentVersion, row.DocumentVersion)
	}

	summary := sessionSummaryModel{
		PublicID:         row.PublicID,
		Name:             row.Name,
		Phase:            row.Phase,
		ParticipantCount: row.ParticipantCount,
		EntryCount:       row.EntryCount,
		UpdatedAt:        row.UpdatedAt,
	}.toDomain()
	want := snap.Summary()
	if !summary.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("updated_at = %s, want %s", summary.UpdatedAt, want.UpdatedAt)
	}
	summary.UpdatedAt = want.UpdatedAt
	if summary != want {
		t.Fatalf("summary mismatch:\nwant %+v\ngot  %+v", want, summary)
	}
}

func TestSQLErrorHelpers(t *testing.T) {
	if !isNotFound(fmt.Errorf("select: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("expected unrelated error not to be not found")
	}
	if !isUndefinedTable(&pq.Error{Code: "42P01"}) {
		t.Fatalf("expected 42P01 to be undefined table")
	}
	if isUndefinedTable(&pq.Error{Code: "23505"}) {
		t.Fatalf("expected unique violation not to be undefined table")
	}
}

func TestSessionQueries(t *testing.T) {
	t.Run("upsert skips surrogate id and keeps deleted rows deleted", func(t *testing.T) {
		query, args, err := upsertSessionSQL(newSessionRow(gamesession.Snapshot{ID: "s1", Name: "Derby"}, `{}`))
		if err != nil {
			t.Fatalf("build upsert: %v", err)
		}
		want := "INSERT INTO game_sessions (public_id, name, phase, is_live_mode, match_ref, participant_count, " +
			"entry_count, document_version, document, created_at, updated_at) " +
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CAST($9 AS JSONB), $10, $11) " +
			"ON CONFLICT (public_id) DO UPDATE SET name = EXCLUDED.name, phase = EXCLUDED.phase, " +
			"is_live_mode = EXCLUDED.is_live_mode, match_ref = EXCLUDED.match_ref, " +
			"participant_count = EXCLUDED.participant_count, entry_count = EXCLUDED.entry_count, " +
			"document_version = EXCLUDED.document_version, document = EXCLUDED.document, " +
			"updated_at = EXCLUDED.updated_at WHERE game_sessions.deleted_at IS NULL"
		if query != want {
			t.Fatalf("unexpected upsert:\nwant: %s\ngot:  %s", want, query)
		}
		if len(args) != 11 || args[0] != "s1" {
			t.Fatalf("unexpected args: %+v", args)
		}
	})

	t.Run("select reads document as text", func(t *testing.T) {
		query, args, err := selectSessionSQL("s1")
		if err != nil {
			t.Fatalf("build select: %v", err)
		}
		want := "SELECT id, public_id, name, phase, is_live_mode, match_ref, participant_count, entry_count, " +
			"document_version, document::TEXT AS document, created_at, updated_at, deleted_at " +
			"FROM game_sessions WHERE public_id = $1 AND deleted_at IS NULL"
		if query != want {
			t.Fatalf("unexpected select:\nwant: %s\ngot:  %s", want, query)
		}
		if len(args) != 1 || args[0] != "s1" {
			t.Fatalf("unexpected args: %+v", args)
		}
	})

	t.Run("list orders by most recent", func(t *testing.T) {
		query, _, err := listSessionsSQL()
		if err != nil {
			t.Fatalf("build list: %v", err)
		}
		want := "SELECT public_id, name, phase, is_live_mode, match_ref, participant_count, entry_count, updated_at " +
			"FROM game_sessions WHERE deleted_at IS NULL ORDER BY updated_at DESC, public_id"
		if query != want {
			t.Fatalf("unexpected list:\nwant: %s\ngot:  %s", want, query)
		}
	})
}
