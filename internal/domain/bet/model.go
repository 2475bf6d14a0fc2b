package bet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EventType is the closed set of match occurrences a bet can be placed on.
type EventType string

const (
	EventGoal          EventType = "goal"
	EventAssist        EventType = "assist"
	EventYellowCard    EventType = "yellow_card"
	EventRedCard       EventType = "red_card"
	EventOwnGoal       EventType = "own_goal"
	EventPenaltyScored EventType = "penalty_scored"
	EventPenaltyMissed EventType = "penalty_missed"
	EventCleanSheet    EventType = "clean_sheet"
	EventCustom        EventType = "custom"
)

var AllEventTypes = map[EventType]struct{}{
	EventGoal:          {},
	EventAssist:        {},
	EventYellowCard:    {},
	EventRedCard:       {},
	EventOwnGoal:       {},
	EventPenaltyScored: {},
	EventPenaltyMissed: {},
	EventCleanSheet:    {},
	EventCustom:        {},
}

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidBet       = errors.New("invalid bet")
	ErrDuplicateBet     = errors.New("bet already exists")
	ErrBetNotFound      = errors.New("bet not found")
)

// ParseEventType accepts the canonical value plus the camelCase spelling used by clients.
func ParseEventType(raw string) (EventType, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "yellowcard":
		value = string(EventYellowCard)
	case "redcard":
		value = string(EventRedCard)
	case "owngoal":
		value = string(EventOwnGoal)
	case "penaltyscored":
		value = string(EventPenaltyScored)
	case "penaltymissed":
		value = string(EventPenaltyMissed)
	case "cleansheet":
		value = string(EventCleanSheet)
	}

	t := EventType(value)
	if _, ok := AllEventTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventType, raw)
	}
	return t, nil
}

// Label is the human readable name shown next to ledger entries.
func (t EventType) Label() string {
	switch t {
	case EventGoal:
		return "Goal"
	case EventAssist:
		return "Assist"
	case EventYellowCard:
		return "Yellow Card"
	case EventRedCard:
		return "Red Card"
	case EventOwnGoal:
		return "Own Goal"
	case EventPenaltyScored:
		return "Penalty Scored"
	case EventPenaltyMissed:
		return "Penalty Missed"
	case EventCleanSheet:
		return "Clean Sheet"
	case EventCustom:
		return "Custom"
	default:
		return string(t)
	}
}

// Bet is a stake rule: every occurrence of Type moves Amount to the owner of the player involved.
// Name only applies to custom bets and distinguishes them from each other.
type Bet struct {
	Type   EventType
	Name   string
	Amount decimal.Decimal
}

func (b Bet) Validate() error {
	if _, ok := AllEventTypes[b.Type]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, b.Type)
	}
	if b.Type == EventCustom && strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("%w: custom bet name is required", ErrInvalidBet)
	}
	if b.Type != EventCustom && b.Name != "" {
		return fmt.Errorf("%w: only custom bets carry a name", ErrInvalidBet)
	}
	if b.Amount.IsZero() {
		return fmt.Errorf("%w: amount must be non-zero", ErrInvalidBet)
	}
	if !b.Amount.Equal(b.Amount.Round(2)) {
		return fmt.Errorf("%w: amount %s has more than two decimal places", ErrInvalidBet, b.Amount)
	}

	return nil
}

// Key identifies the bet inside a Book.
func (b Bet) Key() string {
	if b.Type == EventCustom {
		return string(EventCustom) + ":" + b.Name
	}
	return string(b.Type)
}

func (b Bet) IsCustom() bool {
	return b.Type == EventCustom
}
