package livematch

import (
	"context"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
)

// Status mirrors the match lifecycle reported by the feed.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusTimed     Status = "TIMED"
	StatusInPlay    Status = "IN_PLAY"
	StatusPaused    Status = "PAUSED"
	StatusFinished  Status = "FINISHED"
	StatusPostponed Status = "POSTPONED"
	StatusSuspended Status = "SUSPENDED"
	StatusCancelled Status = "CANCELLED"
)

const (
	PollInPlay    = 30 * time.Second
	PollHalfTime  = 300 * time.Second
	PollScheduled = 600 * time.Second
)

// PollInterval returns how long to wait before polling a match again. ok is false once the match
// can no longer produce events.
func (s Status) PollInterval() (time.Duration, bool) {
	switch s {
	case StatusInPlay:
		return PollInPlay, true
	case StatusPaused, StatusSuspended:
		return PollHalfTime, true
	case StatusScheduled, StatusTimed, StatusPostponed:
		return PollScheduled, true
	case StatusFinished, StatusCancelled:
		return 0, false
	default:
		return PollScheduled, true
	}
}

func (s Status) IsLive() bool {
	return s == StatusInPlay || s == StatusPaused
}

type Score struct {
	Home int
	Away int
}

type Match struct {
	ID       string
	HomeTeam string
	AwayTeam string
	Status   Status
	Minute   int
	Kickoff  time.Time
	Score    Score
}

// RawEventType is the event vocabulary of the feed.
type RawEventType string

const (
	RawRegular RawEventType = "REGULAR"
	RawPenalty RawEventType = "PENALTY"
	RawYellow  RawEventType = "YELLOW"
	RawRed     RawEventType = "RED"
	RawOwn     RawEventType = "OWN"
	RawAssist  RawEventType = "ASSIST"
)

// RawEvent is one occurrence as delivered by the feed. Delivery is at least once.
type RawEvent struct {
	ExternalID string
	Type       RawEventType
	PlayerID   string
	Minute     int
}

// EventType maps the feed vocabulary onto bet event types. ok is false for types the game ignores.
func (t RawEventType) EventType() (bet.EventType, bool) {
	switch t {
	case RawRegular, RawPenalty:
		return bet.EventGoal, true
	case RawYellow:
		return bet.EventYellowCard, true
	case RawRed:
		return bet.EventRedCard, true
	case RawOwn:
		return bet.EventOwnGoal, true
	case RawAssist:
		return bet.EventAssist, true
	default:
		return "", false
	}
}

// Provider is the live-data collaborator.
type Provider interface {
	FetchLiveMatches(ctx context.Context) ([]Match, error)
	FetchUpcomingMatches(ctx context.Context, days int) ([]Match, error)
	FetchMatchDetails(ctx context.Context, matchID string) (Match, error)
	FetchMatchEvents(ctx context.Context, matchID string) ([]RawEvent, error)
}
