package gamesession

import (
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/riskibarqy/matchbet/internal/domain/team"
	"github.com/shopspring/decimal"
)

// Snapshot is the persisted form of a session. It carries both the materialized balances and the
// full ledger so a restore can cross-check one against the other.
type Snapshot struct {
	ID              string
	Name            string
	Phase           Phase
	Policy          CustomPolicy
	IsLiveMode      bool
	MatchRef        string
	Teams           []team.Team
	Players         []player.Player
	SelectedPlayers []string
	Participants    []Participant
	Bets            []bet.Bet
	Entries         []Entry
	UndoneLiveKeys  []string
	StartedFrom     Phase
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary is the listing view of a snapshot.
type Summary struct {
	ID           string
	Name         string
	Phase        Phase
	IsLiveMode   bool
	MatchRef     string
	Participants int
	Entries      int
	UpdatedAt    time.Time
}

func (s Snapshot) Summary() Summary {
	return Summary{
		ID:           s.ID,
		Name:         s.Name,
		Phase:        s.Phase,
		IsLiveMode:   s.IsLiveMode,
		MatchRef:     s.MatchRef,
		Participants: len(s.Participants),
		Entries:      len(s.Entries),
		UpdatedAt:    s.UpdatedAt,
	}
}

func (s Snapshot) Clone() Snapshot {
	out := s
	out.Teams = append([]team.Team(nil), s.Teams...)
	out.Players = append([]player.Player(nil), s.Players...)
	out.SelectedPlayers = append([]string(nil), s.SelectedPlayers...)
	out.Participants = cloneParticipants(s.Participants)
	out.Bets = append([]bet.Bet(nil), s.Bets...)
	out.UndoneLiveKeys = append([]string(nil), s.UndoneLiveKeys...)
	out.Entries = make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries {
		out.Entries = append(out.Entries, e.clone())
	}
	return out
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:              s.id,
		Name:            s.name,
		Phase:           s.phase,
		Policy:          s.policy,
		IsLiveMode:      s.liveMode,
		MatchRef:        s.matchRef,
		Teams:           append([]team.Team(nil), s.teams...),
		Players:         append([]player.Player(nil), s.players...),
		SelectedPlayers: append([]string(nil), s.selected...),
		Participants:    cloneParticipants(s.participants),
		Bets:            s.book.All(),
		Entries:         s.ledger.Entries(),
		UndoneLiveKeys:  undoneKeys(s.undoneLive),
		StartedFrom:     s.startedFrom,
		CreatedAt:       s.createdAt,
		UpdatedAt:       s.updatedAt,
	}
}

// Restore rebuilds a session from a snapshot. It rejects snapshots whose materialized balances
// disagree with the ledger or whose rosters break exclusivity. Player counters are recomputed
// from the ledger.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	if snap.ID == "" {
		return nil, fmt.Errorf("%w: snapshot id is required", ErrCorruptSnapshot)
	}
	if !snap.Phase.Valid() {
		return nil, fmt.Errorf("%w: unknown phase %q", ErrCorruptSnapshot, snap.Phase)
	}
	if snap.StartedFrom != "" && snap.StartedFrom != PhaseSetup && snap.StartedFrom != PhaseAssigning {
		return nil, fmt.Errorf("%w: unexpected start phase %q", ErrCorruptSnapshot, snap.StartedFrom)
	}

	s := newSession(opts...)
	s.id = snap.ID
	s.name = snap.Name
	s.phase = snap.Phase
	if snap.Policy != "" {
		s.policy = snap.Policy
	}
	s.liveMode = snap.IsLiveMode
	s.matchRef = snap.MatchRef
	s.startedFrom = snap.StartedFrom
	if len(snap.UndoneLiveKeys) > 0 {
		s.undoneLive = make(map[string]struct{}, len(snap.UndoneLiveKeys))
		for _, key := range snap.UndoneLiveKeys {
			s.undoneLive[key] = struct{}{}
		}
	}
	s.createdAt = snap.CreatedAt
	s.updatedAt = snap.UpdatedAt

	book, err := bet.NewBook(snap.Bets...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	s.book = book

	clone := snap.Clone()
	s.teams = clone.Teams
	s.players = clone.Players
	s.selected = clone.SelectedPlayers
	s.participants = clone.Participants

	for i, e := range clone.Entries {
		if e.Seq() != i+1 {
			return nil, fmt.Errorf("%w: ledger entry %d has sequence %d", ErrCorruptSnapshot, i+1, e.Seq())
		}
		if (e.Kind == EntryEvent && e.Event == nil) || (e.Kind == EntrySubstitution && e.Substitution == nil) {
			return nil, fmt.Errorf("%w: ledger entry %d is empty", ErrCorruptSnapshot, i+1)
		}
		s.ledger.Append(e)
	}

	replayed := s.ledger.Balances()
	for _, p := range s.participants {
		if p.Balance.Sub(replayed[p.ID]).Abs().GreaterThan(Tolerance) {
			return nil, fmt.Errorf("%w: participant %s balance %s does not match ledger %s",
				ErrCorruptSnapshot, p.ID, p.Balance, replayed[p.ID])
		}
		delete(replayed, p.ID)
	}
	for participantID, amount := range replayed {
		if !amount.Equal(decimal.Zero) {
			return nil, fmt.Errorf("%w: ledger references unknown participant %s", ErrCorruptSnapshot, participantID)
		}
	}

	stats := s.ledger.Stats()
	for i := range s.players {
		s.players[i].Stats = stats[s.players[i].ID]
	}

	if err := CheckInvariants(s.participants); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return s, nil
}

func undoneKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
