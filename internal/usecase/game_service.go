package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/riskibarqy/matchbet/internal/domain/team"
	"github.com/riskibarqy/matchbet/internal/platform/id"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type GameServiceConfig struct {
	CustomPolicy gamesession.CustomPolicy
}

// SessionNotifier is told about every stored change. Implementations must not block.
type SessionNotifier interface {
	SessionChanged(ctx context.Context, snap gamesession.Snapshot)
	SessionDeleted(ctx context.Context, sessionID string)
}

// GameService keeps the loaded sessions in memory and writes a snapshot after every change.
type GameService struct {
	repo   gamesession.Repository
	ids    id.Generator
	cfg    GameServiceConfig
	logger *logging.Logger
	now    func() time.Time

	notifier SessionNotifier

	mu       sync.RWMutex
	sessions map[string]*sessionHandle
}

type sessionHandle struct {
	session *gamesession.Session
	// saveMu orders snapshot writes so an older state never overwrites a newer one.
	saveMu sync.Mutex
}

type CreateSessionInput struct {
	Name string
}

type AddBetInput struct {
	Type   string
	Name   string
	Amount decimal.Decimal
}

type RecordEventInput struct {
	PlayerID string
	Type     string
	Minute   int
}

type RecordCustomEventInput struct {
	PlayerID string
	Name     string
	Minute   int
}

type LiveTarget struct {
	SessionID string
	MatchRef  string
}

func NewGameService(repo gamesession.Repository, ids id.Generator, cfg GameServiceConfig, logger *logging.Logger) *GameService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CustomPolicy == "" {
		cfg.CustomPolicy = gamesession.CustomPolicyBonus
	}

	return &GameService{
		repo:     repo,
		ids:      ids,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*sessionHandle),
	}
}

// SetNotifier must be called before the service handles requests.
func (s *GameService) SetNotifier(n SessionNotifier) {
	s.notifier = n
}

func (s *GameService) sessionOptions() []gamesession.Option {
	return []gamesession.Option{
		gamesession.WithIDGenerator(s.ids),
		gamesession.WithClock(s.now),
		gamesession.WithCustomPolicy(s.cfg.CustomPolicy),
	}
}

func (s *GameService) CreateSession(ctx context.Context, input CreateSessionInput) (gamesession.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.CreateSession")
	defer span.End()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return gamesession.Snapshot{}, fmt.Errorf("%w: session name is required", ErrInvalidInput)
	}

	sessionID, err := s.ids.NewID()
	if err != nil {
		return gamesession.Snapshot{}, fmt.Errorf("generate session id: %w", err)
	}
	session, err := gamesession.New(sessionID, name, s.sessionOptions()...)
	if err != nil {
		return gamesession.Snapshot{}, mapDomainError(err)
	}

	h := &sessionHandle{session: session}
	if err := s.persist(ctx, h); err != nil {
		recordSpanError(span, err)
		return gamesession.Snapshot{}, err
	}

	s.mu.Lock()
	s.sessions[sessionID] = h
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "game session created", "session_id", sessionID, "name", name)
	return session.Snapshot(), nil
}

func (s *GameService) ListSessions(ctx context.Context) ([]gamesession.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListSessions")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("%w: list sessions: %v", ErrDependencyUnavailable, err)
	}
	return items, nil
}

func (s *GameService) GetSession(ctx context.Context, sessionID string) (gamesession.Snapshot, error) {
	h, err := s.load(ctx, sessionID)
	if err != nil {
		return gamesession.Snapshot{}, err
	}
	return h.session.Snapshot(), nil
}

func (s *GameService) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.DeleteSession", attribute.String("session.id", sessionID))
	defer span.End()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, gamesession.ErrNotFound) {
			return mapDomainError(err)
		}
		recordSpanError(span, err)
		return fmt.Errorf("%w: delete session: %v", ErrDependencyUnavailable, err)
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.SessionDeleted(ctx, sessionID)
	}
	s.logger.InfoContext(ctx, "game session deleted", "session_id", sessionID)
	return nil
}

func (s *GameService) AddTeam(ctx context.Context, sessionID string, t team.Team) error {
	return s.mutate(ctx, sessionID, "AddTeam", func(session *gamesession.Session) (bool, error) {
		return true, session.AddTeam(t)
	})
}

func (s *GameService) AddParticipant(ctx context.Context, sessionID, name string) (gamesession.Participant, error) {
	var out gamesession.Participant
	err := s.mutate(ctx, sessionID, "AddParticipant", func(session *gamesession.Session) (bool, error) {
		p, err := session.AddParticipant(name)
		out = p
		return true, err
	})
	return out, err
}

// AddBet registers a standard bet, or a custom one when Type is "custom".
func (s *GameService) AddBet(ctx context.Context, sessionID string, input AddBetInput) error {
	t, err := bet.ParseEventType(input.Type)
	if err != nil {
		return mapDomainError(err)
	}

	return s.mutate(ctx, sessionID, "AddBet", func(session *gamesession.Session) (bool, error) {
		if t == bet.EventCustom {
			return true, session.AddCustomEvent(input.Name, input.Amount)
		}
		return true, session.AddBet(t, input.Amount)
	})
}

func (s *GameService) AddCustomEvent(ctx context.Context, sessionID, name string, amount decimal.Decimal) error {
	return s.AddBet(ctx, sessionID, AddBetInput{Type: string(bet.EventCustom), Name: name, Amount: amount})
}

func (s *GameService) RemoveBet(ctx context.Context, sessionID, key string) error {
	return s.mutate(ctx, sessionID, "RemoveBet", func(session *gamesession.Session) (bool, error) {
		return true, session.RemoveBet(key)
	})
}

func (s *GameService) AddPlayers(ctx context.Context, sessionID string, players []player.Player) error {
	return s.mutate(ctx, sessionID, "AddPlayers", func(session *gamesession.Session) (bool, error) {
		return true, session.AddPlayers(players...)
	})
}

func (s *GameService) SelectPlayers(ctx context.Context, sessionID string, playerIDs []string) error {
	return s.mutate(ctx, sessionID, "SelectPlayers", func(session *gamesession.Session) (bool, error) {
		return true, session.SelectPlayers(playerIDs)
	})
}

// AssignPlayersRandomly deals players across participants. A nil seed picks one from the clock.
func (s *GameService) AssignPlayersRandomly(ctx context.Context, sessionID string, seed *uint64) (uint64, error) {
	used := uint64(s.now().UnixNano())
	if seed != nil {
		used = *seed
	}

	err := s.mutate(ctx, sessionID, "AssignPlayersRandomly", func(session *gamesession.Session) (bool, error) {
		return true, session.AssignPlayersRandomly(used)
	})
	return used, err
}

func (s *GameService) AssignPlayer(ctx context.Context, sessionID, playerID, participantID string) error {
	return s.mutate(ctx, sessionID, "AssignPlayer", func(session *gamesession.Session) (bool, error) {
		return true, session.AssignPlayer(playerID, participantID)
	})
}

func (s *GameService) StartSession(ctx context.Context, sessionID string) error {
	return s.mutate(ctx, sessionID, "StartSession", func(session *gamesession.Session) (bool, error) {
		return true, session.Start()
	})
}

func (s *GameService) FinishSession(ctx context.Context, sessionID string) error {
	err := s.mutate(ctx, sessionID, "FinishSession", func(session *gamesession.Session) (bool, error) {
		return true, session.Finish()
	})
	if err == nil {
		s.logger.InfoContext(ctx, "game session finished", "session_id", sessionID)
	}
	return err
}

func (s *GameService) SetLiveMode(ctx context.Context, sessionID string, enabled bool, matchRef string) error {
	return s.mutate(ctx, sessionID, "SetLiveMode", func(session *gamesession.Session) (bool, error) {
		return true, session.SetLiveMode(enabled, matchRef)
	})
}

func (s *GameService) RecordEvent(ctx context.Context, sessionID string, input RecordEventInput) (gamesession.Outcome, error) {
	t, err := bet.ParseEventType(input.Type)
	if err != nil {
		return gamesession.Outcome{}, mapDomainError(err)
	}

	var out gamesession.Outcome
	err = s.mutate(ctx, sessionID, "RecordEvent", func(session *gamesession.Session) (bool, error) {
		var recErr error
		out, recErr = session.RecordEvent(input.PlayerID, t, input.Minute)
		return out.Applied, recErr
	})
	return out, err
}

func (s *GameService) RecordCustomEvent(ctx context.Context, sessionID string, input RecordCustomEventInput) (gamesession.Outcome, error) {
	var out gamesession.Outcome
	err := s.mutate(ctx, sessionID, "RecordCustomEvent", func(session *gamesession.Session) (bool, error) {
		var recErr error
		out, recErr = session.RecordCustomEvent(input.PlayerID, input.Name, input.Minute)
		return out.Applied, recErr
	})
	return out, err
}

func (s *GameService) RecordLiveEvent(ctx context.Context, sessionID string, ev gamesession.LiveEvent) (gamesession.Outcome, error) {
	var out gamesession.Outcome
	err := s.mutate(ctx, sessionID, "RecordLiveEvent", func(session *gamesession.Session) (bool, error) {
		var recErr error
		out, recErr = session.RecordLiveEvent(ev)
		return out.Applied, recErr
	})
	return out, err
}

func (s *GameService) SubstitutePlayer(ctx context.Context, sessionID string, input gamesession.SubstitutionInput) (gamesession.Outcome, error) {
	var out gamesession.Outcome
	err := s.mutate(ctx, sessionID, "SubstitutePlayer", func(session *gamesession.Session) (bool, error) {
		var subErr error
		out, subErr = session.SubstitutePlayer(input)
		return out.Applied, subErr
	})
	return out, err
}

func (s *GameService) UndoLastEvent(ctx context.Context, sessionID string) (gamesession.UndoResult, error) {
	var out gamesession.UndoResult
	err := s.mutate(ctx, sessionID, "UndoLastEvent", func(session *gamesession.Session) (bool, error) {
		var undoErr error
		out, undoErr = session.UndoLastEvent()
		return out.Undone, undoErr
	})
	return out, err
}

func (s *GameService) PlayerStatistics(ctx context.Context, sessionID string) ([]gamesession.PlayerStatistics, error) {
	h, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return h.session.PlayerStatistics(), nil
}

// ListLiveSessions returns every stored session in live mode that has a match reference.
func (s *GameService) ListLiveSessions(ctx context.Context) ([]LiveTarget, error) {
	summaries, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LiveTarget, 0, len(summaries))
	for _, item := range summaries {
		if !item.IsLiveMode || item.MatchRef == "" || item.Phase == gamesession.PhaseSummary {
			continue
		}
		out = append(out, LiveTarget{SessionID: item.ID, MatchRef: item.MatchRef})
	}
	return out, nil
}

// mutate runs fn against the session and persists it when fn reports a change.
func (s *GameService) mutate(ctx context.Context, sessionID, op string, fn func(*gamesession.Session) (bool, error)) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService."+op, attribute.String("session.id", sessionID))
	defer span.End()

	h, err := s.load(ctx, sessionID)
	if err != nil {
		recordSpanError(span, err)
		return err
	}

	changed, err := fn(h.session)
	if err != nil {
		if isAssertionFailure(err) {
			s.logger.ErrorContext(ctx, "engine invariant violated", "session_id", sessionID, "op", op, "error", err)
		} else {
			s.logger.DebugContext(ctx, "session operation rejected", "session_id", sessionID, "op", op, "error", err)
		}
		recordSpanError(span, err)
		return mapDomainError(err)
	}
	if !changed {
		return nil
	}

	if err := s.persist(ctx, h); err != nil {
		recordSpanError(span, err)
		return err
	}
	return nil
}

func (s *GameService) load(ctx context.Context, sessionID string) (*sessionHandle, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidInput)
	}

	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return h, nil
	}

	snap, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gamesession.ErrNotFound) {
			return nil, mapDomainError(err)
		}
		return nil, fmt.Errorf("%w: load session: %v", ErrDependencyUnavailable, err)
	}
	session, err := gamesession.Restore(snap, s.sessionOptions()...)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored session failed to restore", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("restore session %s: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[sessionID]; ok {
		return existing, nil
	}
	h = &sessionHandle{session: session}
	s.sessions[sessionID] = h
	return h, nil
}

func (s *GameService) persist(ctx context.Context, h *sessionHandle) error {
	h.saveMu.Lock()
	defer h.saveMu.Unlock()

	snap := h.session.Snapshot()
	if err := s.repo.Save(ctx, snap); err != nil {
		s.logger.WarnContext(ctx, "save session failed", "session_id", snap.ID, "error", err)
		return fmt.Errorf("%w: save session: %v", ErrDependencyUnavailable, err)
	}
	if s.notifier != nil {
		s.notifier.SessionChanged(ctx, snap)
	}
	return nil
}
