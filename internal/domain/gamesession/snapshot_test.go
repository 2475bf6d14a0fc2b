package gamesession

import (
	"errors"
	"testing"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/player"
)

func playedFixture(t *testing.T) fixture {
	t.Helper()
	f := newFixture(t)
	s := f.session

	mustNoErr(t, s.SetLiveMode(true, "match-4411"))
	_, err := s.RecordLiveEvent(LiveEvent{ExternalID: "g1", ExternalPlayerID: "7001", Type: bet.EventGoal, Minute: 9})
	mustNoErr(t, err)
	_, err = s.SubstitutePlayer(SubstitutionInput{PlayerOffID: "x", PlayerOn: player.Player{ID: "y", Name: "Martinelli", TeamID: "ars"}, Minute: 45})
	mustNoErr(t, err)
	_, err = s.RecordEvent("z", bet.EventYellowCard, 50)
	mustNoErr(t, err)
	_, err = s.RecordCustomEvent("y", "Hat Trick Celebration", 88)
	mustNoErr(t, err)
	return f
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	f := playedFixture(t)
	original := f.session

	snap := original.Snapshot()
	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	assertSameState(t, snap, restored.Snapshot())
	if restored.Phase() != PhaseActive || !restored.IsLiveMode() || restored.MatchRef() != "match-4411" {
		t.Fatalf("unexpected restored header: phase=%s live=%t ref=%s", restored.Phase(), restored.IsLiveMode(), restored.MatchRef())
	}
	if len(restored.CustomEvents()) != 1 || len(restored.Teams()) != 2 {
		t.Fatalf("bets and teams must survive a restore")
	}

	dup, err := restored.RecordLiveEvent(LiveEvent{ExternalID: "g1", ExternalPlayerID: "7001", Type: bet.EventGoal, Minute: 9})
	mustNoErr(t, err)
	if dup.Applied {
		t.Fatalf("dedup index must be rebuilt on restore")
	}

	for i := 0; i < 4; i++ {
		_, err := restored.UndoLastEvent()
		mustNoErr(t, err)
	}
	for _, p := range restored.Participants() {
		if !p.Balance.IsZero() {
			t.Fatalf("undoing a restored ledger must return %s to zero, got %s", p.Name, p.Balance)
		}
	}
	alice, _ := restored.Participant(f.alice.ID)
	if len(alice.SubstitutedPlayers) != 0 || alice.ActivePlayers[0] != "x" {
		t.Fatalf("substitution must be reversible after restore: %+v", alice)
	}

	if original.LedgerLen() != 4 {
		t.Fatalf("restore must not share state with the source session")
	}
}

func TestRestoreRecomputesPlayerStats(t *testing.T) {
	snap := playedFixture(t).session.Snapshot()
	for i := range snap.Players {
		snap.Players[i].Stats = player.Stats{Goals: 99}
	}

	restored, err := Restore(snap)
	mustNoErr(t, err)
	for _, p := range restored.AvailablePlayers() {
		if p.ID == "x" && p.Stats.Goals != 1 {
			t.Fatalf("x should have one goal, got %+v", p.Stats)
		}
		if p.ID == "w" && p.Stats.Goals != 0 {
			t.Fatalf("w should have no goals, got %+v", p.Stats)
		}
	}
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{name: "balance drift", mutate: func(s *Snapshot) { s.Participants[0].Balance = s.Participants[0].Balance.Add(dec("0.02")) }},
		{name: "sequence gap", mutate: func(s *Snapshot) { s.Entries = append(s.Entries[:1], s.Entries[2:]...) }},
		{name: "unknown phase", mutate: func(s *Snapshot) { s.Phase = "halftime" }},
		{name: "roster clash", mutate: func(s *Snapshot) {
			s.Participants[1].ActivePlayers = append(s.Participants[1].ActivePlayers, s.Participants[0].ActivePlayers[0])
		}},
		{name: "duplicate bet", mutate: func(s *Snapshot) { s.Bets = append(s.Bets, s.Bets[0]) }},
		{name: "empty entry", mutate: func(s *Snapshot) { s.Entries[0].Event = nil }},
		{name: "bad start phase", mutate: func(s *Snapshot) { s.StartedFrom = PhaseSummary }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := playedFixture(t).session.Snapshot()
			tt.mutate(&snap)
			if _, err := Restore(snap); !errors.Is(err, ErrCorruptSnapshot) {
				t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
			}
		})
	}
}

func TestRestoreToleratesSubCentRounding(t *testing.T) {
	snap := playedFixture(t).session.Snapshot()
	snap.Participants[0].Balance = snap.Participants[0].Balance.Add(dec("0.004"))
	if _, err := Restore(snap); err != nil {
		t.Fatalf("differences within tolerance are accepted: %v", err)
	}
}

func TestSnapshotSummary(t *testing.T) {
	snap := playedFixture(t).session.Snapshot()
	sum := snap.Summary()
	if sum.ID != "session-1" || sum.Participants != 2 || sum.Entries != 4 || !sum.IsLiveMode {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
