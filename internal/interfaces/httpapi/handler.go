package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/matchbet/internal/domain/player"
	"github.com/riskibarqy/matchbet/internal/domain/team"
	"github.com/riskibarqy/matchbet/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeSession responds with the current state of the session after a successful change.
func (h *Handler) writeSession(ctx context.Context, w http.ResponseWriter, status int, sessionID string) {
	snap, err := h.gameService.GetSession(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, status, sessionToDTO(snap))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "CreateSession")
	defer span.End()

	var req createSessionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	snap, err := h.gameService.CreateSession(ctx, usecase.CreateSessionInput{Name: req.Name})
	if err != nil {
		h.logger.WarnContext(ctx, "create session failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(snap))
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "ListSessions")
	defer span.End()

	items, err := h.gameService.ListSessions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list sessions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]sessionSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, sessionSummaryToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "GetSession")
	defer span.End()

	h.writeSession(ctx, w, http.StatusOK, r.PathValue("sessionID"))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "DeleteSession")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	if err := h.gameService.DeleteSession(ctx, sessionID); err != nil {
		h.logger.WarnContext(ctx, "delete session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": sessionID})
}

func (h *Handler) AddTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "AddTeam")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req addTeamRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.gameService.AddTeam(ctx, sessionID, team.Team{
		ID:    req.ID,
		Name:  req.Name,
		Short: req.Short,
		Color: req.Color,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add team failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusCreated, sessionID)
}

func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "AddParticipant")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req addParticipantRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.gameService.AddParticipant(ctx, sessionID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "add participant failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, participantToDTO(p))
}

func (h *Handler) AddBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "AddBet")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req addBetRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.gameService.AddBet(ctx, sessionID, usecase.AddBetInput{
		Type:   req.Type,
		Name:   req.Name,
		Amount: req.Amount,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add bet failed", "session_id", sessionID, "type", req.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusCreated, sessionID)
}

func (h *Handler) AddCustomBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "AddCustomBet")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req addCustomBetRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.gameService.AddCustomEvent(ctx, sessionID, req.Name, req.Amount); err != nil {
		h.logger.WarnContext(ctx, "add custom bet failed", "session_id", sessionID, "name", req.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusCreated, sessionID)
}

func (h *Handler) RemoveBet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "RemoveBet")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	key := r.PathValue("betKey")
	if err := h.gameService.RemoveBet(ctx, sessionID, key); err != nil {
		h.logger.WarnContext(ctx, "remove bet failed", "session_id", sessionID, "bet_key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusOK, sessionID)
}

func (h *Handler) AddPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "AddPlayers")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req addPlayersRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	players := make([]player.Player, 0, len(req.Players))
	for _, item := range req.Players {
		players = append(players, item.toDomain())
	}
	if err := h.gameService.AddPlayers(ctx, sessionID, players); err != nil {
		h.logger.WarnContext(ctx, "add players failed", "session_id", sessionID, "count", len(players), "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusCreated, sessionID)
}

func (h *Handler) SelectPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "SelectPlayers")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req selectPlayersRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.gameService.SelectPlayers(ctx, sessionID, req.PlayerIDs); err != nil {
		h.logger.WarnContext(ctx, "select players failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusOK, sessionID)
}

func (h *Handler) AssignPlayersRandomly(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "AssignPlayersRandomly")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req randomAssignRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	seed, err := h.gameService.AssignPlayersRandomly(ctx, sessionID, req.Seed)
	if err != nil {
		h.logger.WarnContext(ctx, "random assignment failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	snap, err := h.gameService.GetSession(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, randomAssignResponseDTO{Seed: seed, Session: sessionToDTO(snap)})
}

func (h *Handler) AssignPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "AssignPlayer")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	playerID := r.PathValue("playerID")
	var req assignPlayerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.gameService.AssignPlayer(ctx, sessionID, playerID, req.ParticipantID); err != nil {
		h.logger.WarnContext(ctx, "assign player failed",
			"session_id", sessionID,
			"player_id", playerID,
			"participant_id", req.ParticipantID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusOK, sessionID)
}

func (h *Handler) ListPlayerStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "ListPlayerStatistics")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	stats, err := h.gameService.PlayerStatistics(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]playerStatisticsDTO, 0, len(stats))
	for _, item := range stats {
		out = append(out, playerStatisticsToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
