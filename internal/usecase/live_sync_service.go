package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/domain/livematch"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// LiveSessionGateway is the part of the game service the sync loop drives.
type LiveSessionGateway interface {
	ListLiveSessions(ctx context.Context) ([]LiveTarget, error)
	RecordLiveEvent(ctx context.Context, sessionID string, ev gamesession.LiveEvent) (gamesession.Outcome, error)
	FinishSession(ctx context.Context, sessionID string) error
}

type LiveSyncConfig struct {
	Workers      int
	TickInterval time.Duration
	// RetryAfter delays the next poll of a session whose feed request failed.
	RetryAfter time.Duration
}

type LiveSyncResult struct {
	SessionID  string           `json:"session_id"`
	MatchID    string           `json:"match_id"`
	Status     livematch.Status `json:"status"`
	Fetched    int              `json:"fetched"`
	Applied    int              `json:"applied"`
	Duplicates int              `json:"duplicates"`
	Skipped    int              `json:"skipped"`
	Finished   bool             `json:"finished"`
	NextPollAt time.Time        `json:"next_poll_at"`
}

type LiveSyncService struct {
	games  LiveSessionGateway
	feed   livematch.Provider
	cfg    LiveSyncConfig
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	nextPoll map[string]time.Time
}

func NewLiveSyncService(games LiveSessionGateway, feed livematch.Provider, cfg LiveSyncConfig, logger *logging.Logger) *LiveSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 5 * time.Second
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = livematch.PollInPlay
	}

	return &LiveSyncService{
		games:    games,
		feed:     feed,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		nextPoll: make(map[string]time.Time),
	}
}

// Run polls due sessions every tick until ctx is cancelled.
func (s *LiveSyncService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "live sync loop started", "tick", s.cfg.TickInterval, "workers", s.cfg.Workers)
	for {
		if _, err := s.SyncDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WarnContext(ctx, "live sync tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "live sync loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SyncDue syncs every live session whose poll time has come, in parallel.
func (s *LiveSyncService) SyncDue(ctx context.Context) ([]LiveSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.SyncDue")
	defer span.End()

	targets, err := s.games.ListLiveSessions(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list live sessions: %w", err)
	}

	now := s.now()
	due := make([]LiveTarget, 0, len(targets))
	s.mu.Lock()
	active := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		active[target.SessionID] = struct{}{}
		if at, ok := s.nextPoll[target.SessionID]; ok && now.Before(at) {
			continue
		}
		due = append(due, target)
	}
	for sessionID := range s.nextPoll {
		if _, ok := active[sessionID]; !ok {
			delete(s.nextPoll, sessionID)
		}
	}
	s.mu.Unlock()

	if len(due) == 0 {
		return nil, nil
	}

	workers := s.cfg.Workers
	if workers > len(due) {
		workers = len(due)
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan LiveSyncResult, len(due))
	var wg sync.WaitGroup
	for _, target := range due {
		target := target
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()

			result, err := s.syncTarget(ctx, target)
			if err != nil {
				s.logger.WarnContext(ctx, "live sync failed",
					"session_id", target.SessionID,
					"match_id", target.MatchRef,
					"error", err,
				)
				return
			}
			results <- result
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit live sync task: %w", err)
		}
	}
	wg.Wait()
	close(results)

	out := make([]LiveSyncResult, 0, len(due))
	for row := range results {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}

// SyncSession polls one session immediately, ignoring its schedule.
func (s *LiveSyncService) SyncSession(ctx context.Context, sessionID string) (LiveSyncResult, error) {
	targets, err := s.games.ListLiveSessions(ctx)
	if err != nil {
		return LiveSyncResult{}, fmt.Errorf("list live sessions: %w", err)
	}
	for _, target := range targets {
		if target.SessionID == sessionID {
			return s.syncTarget(ctx, target)
		}
	}
	return LiveSyncResult{}, fmt.Errorf("%w: session %s is not in live mode", ErrInvalidInput, sessionID)
}

func (s *LiveSyncService) syncTarget(ctx context.Context, target LiveTarget) (LiveSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LiveSyncService.syncTarget",
		attribute.String("session.id", target.SessionID),
		attribute.String("match.id", target.MatchRef),
	)
	defer span.End()

	result := LiveSyncResult{SessionID: target.SessionID, MatchID: target.MatchRef}

	match, err := s.feed.FetchMatchDetails(ctx, target.MatchRef)
	if err != nil {
		s.schedule(target.SessionID, s.cfg.RetryAfter)
		recordSpanError(span, err)
		return result, fmt.Errorf("%w: fetch match %s: %v", ErrDependencyUnavailable, target.MatchRef, err)
	}
	result.Status = match.Status

	interval, keepPolling := match.Status.PollInterval()
	if match.Status == livematch.StatusScheduled || match.Status == livematch.StatusTimed || match.Status == livematch.StatusPostponed {
		result.NextPollAt = s.schedule(target.SessionID, interval)
		return result, nil
	}

	events, err := s.feed.FetchMatchEvents(ctx, target.MatchRef)
	if err != nil {
		s.schedule(target.SessionID, s.cfg.RetryAfter)
		recordSpanError(span, err)
		return result, fmt.Errorf("%w: fetch events for match %s: %v", ErrDependencyUnavailable, target.MatchRef, err)
	}
	result.Fetched = len(events)

	for _, raw := range events {
		eventType, ok := raw.Type.EventType()
		if !ok {
			result.Skipped++
			continue
		}

		out, err := s.games.RecordLiveEvent(ctx, target.SessionID, gamesession.LiveEvent{
			ExternalID:       raw.ExternalID,
			ExternalPlayerID: raw.PlayerID,
			Type:             eventType,
			Minute:           raw.Minute,
		})
		if err != nil {
			recordSpanError(span, err)
			return result, fmt.Errorf("record live event %s: %w", raw.ExternalID, err)
		}

		switch {
		case out.Applied:
			result.Applied++
		case out.Reason == gamesession.ReasonDuplicate:
			result.Duplicates++
		default:
			result.Skipped++
		}
	}

	if !keepPolling {
		if err := s.games.FinishSession(ctx, target.SessionID); err != nil {
			return result, fmt.Errorf("finish session: %w", err)
		}
		s.mu.Lock()
		delete(s.nextPoll, target.SessionID)
		s.mu.Unlock()
		result.Finished = true
	} else {
		result.NextPollAt = s.schedule(target.SessionID, interval)
	}

	if result.Applied > 0 || result.Finished {
		s.logger.InfoContext(ctx, "live events synced",
			"session_id", target.SessionID,
			"match_id", target.MatchRef,
			"status", match.Status,
			"applied", result.Applied,
			"duplicates", result.Duplicates,
			"skipped", result.Skipped,
			"finished", result.Finished,
		)
	}
	return result, nil
}

func (s *LiveSyncService) schedule(sessionID string, after time.Duration) time.Time {
	at := s.now().Add(after)
	s.mu.Lock()
	s.nextPoll[sessionID] = at
	s.mu.Unlock()
	return at
}
