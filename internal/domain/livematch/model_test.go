package livematch

import (
	"testing"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
)

func TestRawEventTypeMapping(t *testing.T) {
	tests := []struct {
		raw    RawEventType
		want   bet.EventType
		wantOK bool
	}{
		{raw: RawRegular, want: bet.EventGoal, wantOK: true},
		{raw: RawPenalty, want: bet.EventGoal, wantOK: true},
		{raw: RawYellow, want: bet.EventYellowCard, wantOK: true},
		{raw: RawRed, want: bet.EventRedCard, wantOK: true},
		{raw: RawOwn, want: bet.EventOwnGoal, wantOK: true},
		{raw: RawAssist, want: bet.EventAssist, wantOK: true},
		{raw: RawEventType("SUBSTITUTION"), wantOK: false},
	}

	for _, tt := range tests {
		got, ok := tt.raw.EventType()
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("%s: got (%s,%t) want (%s,%t)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestStatusPollInterval(t *testing.T) {
	tests := []struct {
		status Status
		want   time.Duration
		wantOK bool
	}{
		{status: StatusInPlay, want: 30 * time.Second, wantOK: true},
		{status: StatusPaused, want: 300 * time.Second, wantOK: true},
		{status: StatusScheduled, want: 600 * time.Second, wantOK: true},
		{status: StatusTimed, want: 600 * time.Second, wantOK: true},
		{status: StatusFinished, wantOK: false},
		{status: StatusCancelled, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := tt.status.PollInterval()
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("%s: got (%s,%t) want (%s,%t)", tt.status, got, ok, tt.want, tt.wantOK)
		}
	}
}
