package player

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
)

// Position represents football position categories.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Player is a real footballer in a session's candidate pool.
// ExternalID links the player to the match feed's player id.
type Player struct {
	ID         string
	Name       string
	TeamID     string
	Position   Position
	ExternalID string
	Stats      Stats
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.Position != "" {
		if _, ok := AllPositions[p.Position]; !ok {
			return fmt.Errorf("invalid player position: %s", p.Position)
		}
	}

	return nil
}

// Stats are counters derived from the ledger. They are a display cache, never the source of truth.
type Stats struct {
	Goals       int
	Assists     int
	YellowCards int
	RedCards    int
}

// Apply moves the counter tracked for t by delta. Untracked event types leave the stats unchanged.
func (s *Stats) Apply(t bet.EventType, delta int) {
	switch t {
	case bet.EventGoal, bet.EventPenaltyScored:
		s.Goals += delta
	case bet.EventAssist:
		s.Assists += delta
	case bet.EventYellowCard:
		s.YellowCards += delta
	case bet.EventRedCard:
		s.RedCards += delta
	case bet.EventOwnGoal, bet.EventPenaltyMissed, bet.EventCleanSheet, bet.EventCustom:
	}
}

func (s Stats) IsZero() bool {
	return s == Stats{}
}
