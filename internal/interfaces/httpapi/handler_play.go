package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/matchbet/internal/domain/bet"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/usecase"
)

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "StartSession")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	if err := h.gameService.StartSession(ctx, sessionID); err != nil {
		h.logger.WarnContext(ctx, "start session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusOK, sessionID)
}

func (h *Handler) FinishSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "FinishSession")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	if err := h.gameService.FinishSession(ctx, sessionID); err != nil {
		h.logger.WarnContext(ctx, "finish session failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusOK, sessionID)
}

func (h *Handler) writeOutcome(ctx context.Context, w http.ResponseWriter, sessionID string, out gamesession.Outcome) {
	snap, err := h.gameService.GetSession(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if out.Applied {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, outcomeResponseDTO{Outcome: outcomeToDTO(out), Session: sessionToDTO(snap)})
}

func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "RecordEvent")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req recordEventRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.gameService.RecordEvent(ctx, sessionID, usecase.RecordEventInput{
		PlayerID: req.PlayerID,
		Type:     req.Type,
		Minute:   req.Minute,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record event failed",
			"session_id", sessionID,
			"player_id", req.PlayerID,
			"type", req.Type,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.writeOutcome(ctx, w, sessionID, out)
}

func (h *Handler) RecordCustomEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "RecordCustomEvent")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req recordCustomEventRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.gameService.RecordCustomEvent(ctx, sessionID, usecase.RecordCustomEventInput{
		PlayerID: req.PlayerID,
		Name:     req.Name,
		Minute:   req.Minute,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record custom event failed",
			"session_id", sessionID,
			"player_id", req.PlayerID,
			"name", req.Name,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.writeOutcome(ctx, w, sessionID, out)
}

func (h *Handler) RecordLiveEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "RecordLiveEvent")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req recordLiveEventRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	eventType, err := bet.ParseEventType(req.Type)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	out, err := h.gameService.RecordLiveEvent(ctx, sessionID, gamesession.LiveEvent{
		ExternalID:       req.ExternalID,
		PlayerID:         req.PlayerID,
		ExternalPlayerID: req.ExternalPlayerID,
		Type:             eventType,
		Minute:           req.Minute,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record live event failed",
			"session_id", sessionID,
			"external_id", req.ExternalID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.writeOutcome(ctx, w, sessionID, out)
}

func (h *Handler) SubstitutePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "SubstitutePlayer")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req substitutionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.gameService.SubstitutePlayer(ctx, sessionID, gamesession.SubstitutionInput{
		PlayerOffID: req.PlayerOffID,
		PlayerOn:    req.PlayerOn.toDomain(),
		TeamID:      req.TeamID,
		Minute:      req.Minute,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "substitution failed",
			"session_id", sessionID,
			"player_off_id", req.PlayerOffID,
			"player_on_id", req.PlayerOn.ID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.writeOutcome(ctx, w, sessionID, out)
}

func (h *Handler) UndoLastEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "UndoLastEvent")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	out, err := h.gameService.UndoLastEvent(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "undo failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	snap, err := h.gameService.GetSession(ctx, sessionID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, undoResponseDTO{
		Undone:  out.Undone,
		Kind:    string(out.Kind),
		Seq:     out.Seq,
		Session: sessionToDTO(snap),
	})
}
