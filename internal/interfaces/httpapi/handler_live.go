package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/matchbet/internal/usecase"
)

func (h *Handler) SetLiveMode(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "SetLiveMode")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	var req setLiveModeRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.gameService.SetLiveMode(ctx, sessionID, req.Enabled, req.MatchRef); err != nil {
		h.logger.WarnContext(ctx, "set live mode failed", "session_id", sessionID, "match_ref", req.MatchRef, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeSession(ctx, w, http.StatusOK, sessionID)
}

func (h *Handler) SyncLiveSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "SyncLiveSession")
	defer span.End()

	if h.liveSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: live match feed is disabled", usecase.ErrDependencyUnavailable))
		return
	}

	sessionID := r.PathValue("sessionID")
	result, err := h.liveSyncService.SyncSession(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "manual live sync failed", "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, liveSyncResultToDTO(result))
}
