package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/riskibarqy/matchbet/internal/domain/team"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"github.com/riskibarqy/matchbet/internal/usecase"
	"github.com/shopspring/decimal"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	gameService     *usecase.GameService
	liveSyncService *usecase.LiveSyncService
	hub             *SessionHub
	logger          *logging.Logger
	validator       *validator.Validate
}

// NewHandler wires the HTTP surface. liveSyncService may be nil when the match feed is disabled.
func NewHandler(
	gameService *usecase.GameService,
	liveSyncService *usecase.LiveSyncService,
	hub *SessionHub,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameService:     gameService,
		liveSyncService: liveSyncService,
		hub:             hub,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, sessionSpanPrefix+"validate")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads and validates a JSON body. An empty body is accepted only when allowEmpty is set.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, dst)
}

type createSessionRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type addTeamRequest struct {
	ID    string `json:"id" validate:"required,max=64"`
	Name  string `json:"name" validate:"required,max=100"`
	Short string `json:"short" validate:"omitempty,max=4"`
	Color string `json:"color" validate:"omitempty,max=7"`
}

type addParticipantRequest struct {
	Name string `json:"name" validate:"required,max=60"`
}

type addBetRequest struct {
	Type   string          `json:"type" validate:"required"`
	Name   string          `json:"name" validate:"omitempty,max=100"`
	Amount decimal.Decimal `json:"amount"`
}

type addCustomBetRequest struct {
	Name   string          `json:"name" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount"`
}

type playerRequest struct {
	ID         string `json:"id" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=100"`
	TeamID     string `json:"teamId" validate:"omitempty,max=64"`
	Position   string `json:"position" validate:"omitempty,oneof=GK DEF MID FWD"`
	ExternalID string `json:"externalId" validate:"omitempty,max=64"`
}

func (p playerRequest) toDomain() player.Player {
	return player.Player{
		ID:         p.ID,
		Name:       p.Name,
		TeamID:     p.TeamID,
		Position:   player.Position(p.Position),
		ExternalID: p.ExternalID,
	}
}

type addPlayersRequest struct {
	Players []playerRequest `json:"players" validate:"required,min=1,dive"`
}

type selectPlayersRequest struct {
	PlayerIDs []string `json:"playerIds" validate:"required,min=1,dive,required"`
}

type randomAssignRequest struct {
	Seed *uint64 `json:"seed"`
}

type assignPlayerRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
}

type recordEventRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Minute   int    `json:"minute" validate:"min=0,max=150"`
}

type recordCustomEventRequest struct {
	PlayerID string `json:"playerId" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Minute   int    `json:"minute" validate:"min=0,max=150"`
}

type recordLiveEventRequest struct {
	ExternalID       string `json:"externalId" validate:"omitempty,max=128"`
	PlayerID         string `json:"playerId" validate:"required_without=ExternalPlayerID"`
	ExternalPlayerID string `json:"externalPlayerId"`
	Type             string `json:"type" validate:"required"`
	Minute           int    `json:"minute" validate:"min=0,max=150"`
}

type substitutionRequest struct {
	PlayerOffID string        `json:"playerOffId" validate:"required"`
	PlayerOn    playerRequest `json:"playerOn"`
	TeamID      string        `json:"teamId" validate:"omitempty,max=64"`
	Minute      int           `json:"minute" validate:"min=0,max=150"`
}

type setLiveModeRequest struct {
	Enabled  bool   `json:"enabled"`
	MatchRef string `json:"matchRef" validate:"required_if=Enabled true,max=64"`
}

type teamDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Short string `json:"short,omitempty"`
	Color string `json:"color,omitempty"`
}

type playerStatsDTO struct {
	Goals       int `json:"goals"`
	Assists     int `json:"assists"`
	YellowCards int `json:"yellowCards"`
	RedCards    int `json:"redCards"`
}

type playerDTO struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	TeamID     string         `json:"teamId,omitempty"`
	Position   string         `json:"position,omitempty"`
	ExternalID string         `json:"externalId,omitempty"`
	Stats      playerStatsDTO `json:"stats"`
}

type participantDTO struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Balance            string   `json:"balance"`
	ActivePlayers      []string `json:"activePlayers"`
	SubstitutedPlayers []string `json:"substitutedPlayers"`
}

type betDTO struct {
	Key    string `json:"key"`
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

type transferDTO struct {
	ParticipantID string `json:"participantId"`
	Delta         string `json:"delta"`
}

type eventDTO struct {
	ID         string        `json:"id"`
	PlayerID   string        `json:"playerId"`
	Type       string        `json:"type"`
	Label      string        `json:"label"`
	Minute     int           `json:"minute"`
	Source     string        `json:"source"`
	ExternalID string        `json:"externalId,omitempty"`
	OwnerID    string        `json:"ownerId,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
	Transfers  []transferDTO `json:"transfers"`
}

type substitutionDTO struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"teamId,omitempty"`
	PlayerOffID string    `json:"playerOffId"`
	PlayerOnID  string    `json:"playerOnId"`
	OwnerID     string    `json:"ownerId,omitempty"`
	Minute      int       `json:"minute"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type entryDTO struct {
	Seq          int              `json:"seq"`
	Kind         string           `json:"kind"`
	Event        *eventDTO        `json:"event,omitempty"`
	Substitution *substitutionDTO `json:"substitution,omitempty"`
}

type sessionDTO struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Phase           string           `json:"phase"`
	CustomPolicy    string           `json:"customPolicy"`
	IsLiveMode      bool             `json:"isLiveMode"`
	MatchRef        string           `json:"matchRef,omitempty"`
	Teams           []teamDTO        `json:"teams"`
	Players         []playerDTO      `json:"players"`
	SelectedPlayers []string         `json:"selectedPlayers"`
	Participants    []participantDTO `json:"participants"`
	Bets            []betDTO         `json:"bets"`
	Ledger          []entryDTO       `json:"ledger"`
	TotalBalance    string           `json:"totalBalance"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type sessionSummaryDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phase        string    `json:"phase"`
	IsLiveMode   bool      `json:"isLiveMode"`
	MatchRef     string    `json:"matchRef,omitempty"`
	Participants int       `json:"participants"`
	Entries      int       `json:"entries"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type outcomeDTO struct {
	Applied   bool          `json:"applied"`
	Reason    string        `json:"reason,omitempty"`
	Seq       int           `json:"seq,omitempty"`
	OwnerID   string        `json:"ownerId,omitempty"`
	Transfers []transferDTO `json:"transfers"`
}

type outcomeResponseDTO struct {
	Outcome outcomeDTO `json:"outcome"`
	Session sessionDTO `json:"session"`
}

type undoResponseDTO struct {
	Undone  bool       `json:"undone"`
	Kind    string     `json:"kind,omitempty"`
	Seq     int        `json:"seq,omitempty"`
	Session sessionDTO `json:"session"`
}

type randomAssignResponseDTO struct {
	Seed    uint64     `json:"seed"`
	Session sessionDTO `json:"session"`
}

type playerStatisticsDTO struct {
	PlayerID string         `json:"playerId"`
	Name     string         `json:"name"`
	TeamID   string         `json:"teamId,omitempty"`
	OwnerID  string         `json:"ownerId,omitempty"`
	Stats    playerStatsDTO `json:"stats"`
}

type liveSyncResultDTO struct {
	SessionID  string     `json:"sessionId"`
	MatchID    string     `json:"matchId"`
	Status     string     `json:"status"`
	Fetched    int        `json:"fetched"`
	Applied    int        `json:"applied"`
	Duplicates int        `json:"duplicates"`
	Skipped    int        `json:"skipped"`
	Finished   bool       `json:"finished"`
	NextPollAt *time.Time `json:"nextPollAt,omitempty"`
}

func formatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{ID: v.ID, Name: v.Name, Short: v.Short, Color: v.Color}
}

func playerStatsToDTO(v player.Stats) playerStatsDTO {
	return playerStatsDTO{
		Goals:       v.Goals,
		Assists:     v.Assists,
		YellowCards: v.YellowCards,
		RedCards:    v.RedCards,
	}
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:         v.ID,
		Name:       v.Name,
		TeamID:     v.TeamID,
		Position:   string(v.Position),
		ExternalID: v.ExternalID,
		Stats:      playerStatsToDTO(v.Stats),
	}
}

func participantToDTO(v gamesession.Participant) participantDTO {
	return participantDTO{
		ID:                 v.ID,
		Name:               v.Name,
		Balance:            formatAmount(v.Balance),
		ActivePlayers:      nonNilStrings(v.ActivePlayers),
		SubstitutedPlayers: nonNilStrings(v.SubstitutedPlayers),
	}
}

func betToDTO(v bet.Bet) betDTO {
	label := v.Type.Label()
	if v.IsCustom() {
		label = v.Name
	}
	return betDTO{
		Key:    v.Key(),
		Type:   string(v.Type),
		Name:   v.Name,
		Label:  label,
		Amount: formatAmount(v.Amount),
	}
}

func transfersToDTO(in []gamesession.Transfer) []transferDTO {
	out := make([]transferDTO, 0, len(in))
	for _, t := range in {
		out = append(out, transferDTO{ParticipantID: t.ParticipantID, Delta: formatAmount(t.Delta)})
	}
	return out
}

func entryToDTO(v gamesession.Entry) entryDTO {
	out := entryDTO{Seq: v.Seq(), Kind: string(v.Kind)}
	if ev := v.Event; ev != nil {
		label := ev.Type.Label()
		if ev.CustomName != "" {
			label = ev.CustomName
		}
		out.Event = &eventDTO{
			ID:         ev.ID,
			PlayerID:   ev.PlayerID,
			Type:       string(ev.Type),
			Label:      label,
			Minute:     ev.Minute,
			Source:     string(ev.Source),
			ExternalID: ev.ExternalID,
			OwnerID:    ev.OwnerID,
			OccurredAt: ev.OccurredAt,
			Transfers:  transfersToDTO(ev.Transfers),
		}
	}
	if sub := v.Substitution; sub != nil {
		out.Substitution = &substitutionDTO{
			ID:          sub.ID,
			TeamID:      sub.TeamID,
			PlayerOffID: sub.PlayerOffID,
			PlayerOnID:  sub.PlayerOnID,
			OwnerID:     sub.OwnerID,
			Minute:      sub.Minute,
			OccurredAt:  sub.OccurredAt,
		}
	}
	return out
}

func sessionToDTO(v gamesession.Snapshot) sessionDTO {
	out := sessionDTO{
		ID:              v.ID,
		Name:            v.Name,
		Phase:           string(v.Phase),
		CustomPolicy:    string(v.Policy),
		IsLiveMode:      v.IsLiveMode,
		MatchRef:        v.MatchRef,
		Teams:           make([]teamDTO, 0, len(v.Teams)),
		Players:         make([]playerDTO, 0, len(v.Players)),
		SelectedPlayers: nonNilStrings(v.SelectedPlayers),
		Participants:    make([]participantDTO, 0, len(v.Participants)),
		Bets:            make([]betDTO, 0, len(v.Bets)),
		Ledger:          make([]entryDTO, 0, len(v.Entries)),
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}

	total := decimal.Zero
	for _, t := range v.Teams {
		out.Teams = append(out.Teams, teamToDTO(t))
	}
	for _, p := range v.Players {
		out.Players = append(out.Players, playerToDTO(p))
	}
	for _, p := range v.Participants {
		out.Participants = append(out.Participants, participantToDTO(p))
		total = total.Add(p.Balance)
	}
	for _, b := range v.Bets {
		out.Bets = append(out.Bets, betToDTO(b))
	}
	for _, e := range v.Entries {
		out.Ledger = append(out.Ledger, entryToDTO(e))
	}
	out.TotalBalance = formatAmount(total)

	return out
}

func sessionSummaryToDTO(v gamesession.Summary) sessionSummaryDTO {
	return sessionSummaryDTO{
		ID:           v.ID,
		Name:         v.Name,
		Phase:        string(v.Phase),
		IsLiveMode:   v.IsLiveMode,
		MatchRef:     v.MatchRef,
		Participants: v.Participants,
		Entries:      v.Entries,
		UpdatedAt:    v.UpdatedAt,
	}
}

func outcomeToDTO(v gamesession.Outcome) outcomeDTO {
	return outcomeDTO{
		Applied:   v.Applied,
		Reason:    string(v.Reason),
		Seq:       v.Seq,
		OwnerID:   v.OwnerID,
		Transfers: transfersToDTO(v.Transfers),
	}
}

func playerStatisticsToDTO(v gamesession.PlayerStatistics) playerStatisticsDTO {
	return playerStatisticsDTO{
		PlayerID: v.PlayerID,
		Name:     v.Name,
		TeamID:   v.TeamID,
		OwnerID:  v.OwnerID,
		Stats:    playerStatsToDTO(v.Stats),
	}
}

func liveSyncResultToDTO(v usecase.LiveSyncResult) liveSyncResultDTO {
	out := liveSyncResultDTO{
		SessionID:  v.SessionID,
		MatchID:    v.MatchID,
		Status:     string(v.Status),
		Fetched:    v.Fetched,
		Applied:    v.Applied,
		Duplicates: v.Duplicates,
		Skipped:    v.Skipped,
		Finished:   v.Finished,
	}
	if !v.NextPollAt.IsZero() {
		next := v.NextPollAt
		out.NextPollAt = &next
	}
	return out
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
