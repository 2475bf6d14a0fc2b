package gamesession

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/shopspring/decimal"
)

// Tolerance is the absolute difference below which two amounts are considered equal.
var Tolerance = decimal.New(1, -2)

type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseAssigning Phase = "assigning"
	PhaseActive    Phase = "active"
	PhaseSummary   Phase = "summary"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseSetup, PhaseAssigning, PhaseActive, PhaseSummary:
		return true
	default:
		return false
	}
}

type Source string

const (
	SourceManual Source = "manual"
	SourceLive   Source = "live"
)

// CustomPolicy decides who pays for custom events.
type CustomPolicy string

const (
	// CustomPolicyBonus credits the owner only; value enters or leaves the game.
	CustomPolicyBonus CustomPolicy = "bonus"
	// CustomPolicyTransfer settles custom events like standard ones, paid by the other participants.
	CustomPolicyTransfer CustomPolicy = "transfer"
)

func ParseCustomPolicy(raw string) (CustomPolicy, error) {
	switch CustomPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CustomPolicyBonus:
		return CustomPolicyBonus, nil
	case CustomPolicyTransfer:
		return CustomPolicyTransfer, nil
	default:
		return "", fmt.Errorf("%w: unknown custom event policy %q", ErrInvalidArgument, raw)
	}
}

// Participant is a person playing the game. A player id is active for at most one participant and
// never both active and substituted for the same participant.
type Participant struct {
	ID                 string
	Name               string
	Balance            decimal.Decimal
	ActivePlayers      []string
	SubstitutedPlayers []string
}

func (p Participant) clone() Participant {
	p.ActivePlayers = append([]string(nil), p.ActivePlayers...)
	p.SubstitutedPlayers = append([]string(nil), p.SubstitutedPlayers...)
	return p
}

// Transfer is one balance movement produced by settlement.
type Transfer struct {
	ParticipantID string
	Delta         decimal.Decimal
}

func cloneTransfers(in []Transfer) []Transfer {
	if len(in) == 0 {
		return nil
	}
	return append([]Transfer(nil), in...)
}

// GameEvent is an applied match event together with the settlement resolved when it was recorded.
type GameEvent struct {
	ID         string
	Seq        int
	PlayerID   string
	Type       bet.EventType
	CustomName string
	Minute     int
	OccurredAt time.Time
	Source     Source
	ExternalID string
	DedupKey   string
	OwnerID    string
	Transfers  []Transfer
}

// Substitution records a roster slot handover. SlotIndex is the position of PlayerOffID in the
// owner's active list at the time of the substitution.
type Substitution struct {
	ID              string
	Seq             int
	TeamID          string
	PlayerOffID     string
	PlayerOnID      string
	OwnerID         string
	Minute          int
	OccurredAt      time.Time
	SlotIndex       int
	CreatedPlayerOn bool
}

type EntryKind string

const (
	EntryEvent        EntryKind = "event"
	EntrySubstitution EntryKind = "substitution"
)

// Entry is one ledger record: exactly one of Event or Substitution is set.
type Entry struct {
	Kind         EntryKind
	Event        *GameEvent
	Substitution *Substitution
}

func (e Entry) Seq() int {
	switch e.Kind {
	case EntryEvent:
		if e.Event != nil {
			return e.Event.Seq
		}
	case EntrySubstitution:
		if e.Substitution != nil {
			return e.Substitution.Seq
		}
	}
	return 0
}

func (e Entry) clone() Entry {
	out := Entry{Kind: e.Kind}
	if e.Event != nil {
		ev := *e.Event
		ev.Transfers = cloneTransfers(e.Event.Transfers)
		out.Event = &ev
	}
	if e.Substitution != nil {
		sub := *e.Substitution
		out.Substitution = &sub
	}
	return out
}

// Reason explains why an operation did or did not change state.
type Reason string

const (
	ReasonUnknownPlayer     Reason = "unknown_player"
	ReasonUnknownCustomBet  Reason = "unknown_custom_bet"
	ReasonDuplicate         Reason = "duplicate"
	ReasonPlayerNotActive   Reason = "player_not_active"
	ReasonPlayerUnavailable Reason = "player_unavailable"
	ReasonNoOwner           Reason = "no_owner"
	ReasonNoBet             Reason = "no_bet"
)

// Outcome reports the effect of a recording or substitution call. Applied is false for no-ops,
// which leave the session untouched. An applied event may still carry a Reason when it settled nothing.
type Outcome struct {
	Applied   bool
	Reason    Reason
	Seq       int
	OwnerID   string
	Transfers []Transfer
}

func noop(reason Reason) Outcome {
	return Outcome{Reason: reason}
}

type UndoResult struct {
	Undone bool
	Kind   EntryKind
	Seq    int
}

// LiveEvent is a feed event already mapped to the game's vocabulary. The player is resolved by
// PlayerID, or by ExternalPlayerID against Player.ExternalID when PlayerID is empty.
type LiveEvent struct {
	ExternalID       string
	PlayerID         string
	ExternalPlayerID string
	Type             bet.EventType
	Minute           int
}

func (e LiveEvent) dedupKey(playerID string) string {
	if e.ExternalID != "" {
		return fmt.Sprintf("ext:%s|%s|%s|%d", e.ExternalID, playerID, e.Type, e.Minute)
	}
	return fmt.Sprintf("evt:%s|%s|%d", playerID, e.Type, e.Minute)
}

type SubstitutionInput struct {
	PlayerOffID string
	PlayerOn    player.Player
	TeamID      string
	Minute      int
}

type PlayerStatistics struct {
	PlayerID string
	Name     string
	TeamID   string
	OwnerID  string
	Stats    player.Stats
}
