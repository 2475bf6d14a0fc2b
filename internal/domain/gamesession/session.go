package gamesession

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/riskibarqy/matchbet/internal/domain/team"
	"github.com/riskibarqy/matchbet/internal/platform/id"
	"github.com/shopspring/decimal"
)

// IDGenerator issues ids for participants and ledger entries.
type IDGenerator interface {
	NewID() (string, error)
}

// Session is the authoritative state of one game. All methods are safe for concurrent use;
// mutations are serialized and accessors return copies.
type Session struct {
	mu sync.Mutex

	id        string
	name      string
	phase     Phase
	policy    CustomPolicy
	liveMode  bool
	matchRef  string
	createdAt time.Time
	updatedAt time.Time

	teams        []team.Team
	players      []player.Player
	selected     []string
	participants []Participant
	book         bet.Book
	ledger       Ledger

	// startedFrom is the phase an implicit activation left. It is cleared by Start and restored
	// when undo empties the ledger.
	startedFrom Phase
	undoneLive  map[string]struct{}

	ids IDGenerator
	now func() time.Time
}

type Option func(*Session)

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Session) {
		if gen != nil {
			s.ids = gen
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithCustomPolicy(policy CustomPolicy) Option {
	return func(s *Session) {
		if policy != "" {
			s.policy = policy
		}
	}
}

func New(sessionID, name string, opts ...Option) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	name = strings.TrimSpace(name)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidArgument)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: session name is required", ErrInvalidArgument)
	}

	s := newSession(opts...)
	s.id = sessionID
	s.name = name
	s.createdAt = s.now().UTC()
	s.updatedAt = s.createdAt
	return s, nil
}

func newSession(opts ...Option) *Session {
	s := &Session{
		phase:  PhaseSetup,
		policy: CustomPolicyBonus,
		ids:    id.NewSequenceGenerator(""),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Policy() CustomPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

func (s *Session) IsLiveMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveMode
}

func (s *Session) MatchRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matchRef
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) Teams() []team.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]team.Team(nil), s.teams...)
}

func (s *Session) Participants() []Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneParticipants(s.participants)
}

func (s *Session) Participant(participantID string) (Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.participantIndex(participantID)
	if idx < 0 {
		return Participant{}, false
	}
	return s.participants[idx].clone(), true
}

func (s *Session) AvailablePlayers() []player.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]player.Player(nil), s.players...)
}

func (s *Session) SelectedPlayers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

func (s *Session) Bets() []bet.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.All()
}

// CustomEvents lists the named custom bets.
func (s *Session) CustomEvents() []bet.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Custom()
}

func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

func (s *Session) Events() []GameEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Events()
}

func (s *Session) Substitutions() []Substitution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Substitutions()
}

func (s *Session) LedgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len()
}

func (s *Session) CanUndoLastEvent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Len() > 0
}

// TotalBalance is the sum of all participant balances.
func (s *Session) TotalBalance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, p := range s.participants {
		total = total.Add(p.Balance)
	}
	return total
}

// PlayerStatistics derives per-player counters from the ledger, in pool order.
func (s *Session) PlayerStatistics() []PlayerStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	replayed := s.ledger.Stats()
	out := make([]PlayerStatistics, 0, len(s.players))
	for _, p := range s.players {
		owner, _ := OwnerOf(s.participants, p.ID)
		out = append(out, PlayerStatistics{
			PlayerID: p.ID,
			Name:     p.Name,
			TeamID:   p.TeamID,
			OwnerID:  owner,
			Stats:    replayed[p.ID],
		})
	}
	return out
}

// Start moves the session into play. Setup operations are rejected afterwards.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseSummary:
		return ErrSessionFinished
	case PhaseActive:
		s.startedFrom = ""
		return nil
	}
	s.phase = PhaseActive
	s.startedFrom = ""
	s.touch()
	return nil
}

// Finish closes the session. A finished session is read-only.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSummary {
		return nil
	}
	s.phase = PhaseSummary
	s.liveMode = false
	s.touch()
	return nil
}

// SetLiveMode switches event sourcing to the match feed. matchRef is the feed's match id and is
// required when enabling.
func (s *Session) SetLiveMode(enabled bool, matchRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSummary {
		return ErrSessionFinished
	}
	matchRef = strings.TrimSpace(matchRef)
	if enabled && matchRef == "" && s.matchRef == "" {
		return fmt.Errorf("%w: match reference is required for live mode", ErrInvalidArgument)
	}

	s.liveMode = enabled
	if matchRef != "" {
		s.matchRef = matchRef
	}
	s.touch()
	return nil
}

func (s *Session) guardSetup() error {
	switch s.phase {
	case PhaseSetup, PhaseAssigning:
		return nil
	case PhaseSummary:
		return ErrSessionFinished
	default:
		return ErrSessionLocked
	}
}

func (s *Session) guardPlay() error {
	if s.phase == PhaseSummary {
		return ErrSessionFinished
	}
	return nil
}

func (s *Session) activate() {
	if s.phase == PhaseSetup || s.phase == PhaseAssigning {
		s.startedFrom = s.phase
		s.phase = PhaseActive
	}
}

func (s *Session) teamIndex(teamID string) int {
	for i, t := range s.teams {
		if t.ID == teamID {
			return i
		}
	}
	return -1
}

func (s *Session) touch() {
	s.updatedAt = s.now().UTC()
}

func (s *Session) participantIndex(participantID string) int {
	for i, p := range s.participants {
		if p.ID == participantID {
			return i
		}
	}
	return -1
}

func (s *Session) playerIndex(playerID string) int {
	for i, p := range s.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (s *Session) playerByExternalID(externalID string) (player.Player, bool) {
	if externalID == "" {
		return player.Player{}, false
	}
	for _, p := range s.players {
		if p.ExternalID == externalID {
			return p, true
		}
	}
	return player.Player{}, false
}

func (s *Session) participantIDs() []string {
	out := make([]string, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p.ID)
	}
	return out
}

func (s *Session) applyTransfers(transfers []Transfer, negate bool) {
	for _, tr := range transfers {
		idx := s.participantIndex(tr.ParticipantID)
		if idx < 0 {
			continue
		}
		delta := tr.Delta
		if negate {
			delta = delta.Neg()
		}
		s.participants[idx].Balance = s.participants[idx].Balance.Add(delta)
	}
}

func (s *Session) bumpStats(playerID string, t bet.EventType, delta int) {
	if idx := s.playerIndex(playerID); idx >= 0 {
		s.players[idx].Stats.Apply(t, delta)
	}
}

func cloneParticipants(in []Participant) []Participant {
	out := make([]Participant, 0, len(in))
	for _, p := range in {
		out = append(out, p.clone())
	}
	return out
}
