package matchfeed

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/livematch"
)

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

func (e matchesEnvelope) toDomain() []livematch.Match {
	out := make([]livematch.Match, 0, len(e.Matches))
	for _, item := range e.Matches {
		if item.ID <= 0 {
			continue
		}
		out = append(out, item.toDomain())
	}
	return out
}

type matchItem struct {
	ID       int64     `json:"id"`
	UTCDate  string    `json:"utcDate"`
	Status   string    `json:"status"`
	Minute   *int      `json:"minute"`
	HomeTeam teamRef   `json:"homeTeam"`
	AwayTeam teamRef   `json:"awayTeam"`
	Score    scoreItem `json:"score"`
}

type teamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type scoreItem struct {
	FullTime scorePair `json:"fullTime"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func (m matchItem) toDomain() livematch.Match {
	out := livematch.Match{
		ID:       strconv.FormatInt(m.ID, 10),
		HomeTeam: strings.TrimSpace(m.HomeTeam.Name),
		AwayTeam: strings.TrimSpace(m.AwayTeam.Name),
		Status:   livematch.Status(strings.ToUpper(strings.TrimSpace(m.Status))),
		Score: livematch.Score{
			Home: derefInt(m.Score.FullTime.Home),
			Away: derefInt(m.Score.FullTime.Away),
		},
	}
	if out.Status == "" {
		out.Status = livematch.StatusScheduled
	}
	if m.Minute != nil {
		out.Minute = *m.Minute
	}
	if kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(m.UTCDate)); err == nil {
		out.Kickoff = kickoff.UTC()
	}
	return out
}

type eventsEnvelope struct {
	Events []eventItem `json:"events"`
}

type eventItem struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Minute int     `json:"minute"`
	Player teamRef `json:"player"`
}

// externalID falls back to a type/player/minute key when the feed omits the event id.
func (e eventItem) externalID() string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return id
	}
	return strings.ToUpper(strings.TrimSpace(e.Type)) + ":" + strconv.FormatInt(e.Player.ID, 10) + ":" + strconv.Itoa(e.Minute)
}

func derefInt(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
