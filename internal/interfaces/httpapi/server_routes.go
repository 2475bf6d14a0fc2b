package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/sessions", handler.CreateSession)
	mux.HandleFunc("GET /v1/sessions", handler.ListSessions)
	mux.HandleFunc("GET /v1/sessions/{sessionID}", handler.GetSession)
	mux.HandleFunc("DELETE /v1/sessions/{sessionID}", handler.DeleteSession)
	mux.HandleFunc("GET /v1/sessions/{sessionID}/statistics", handler.ListPlayerStatistics)
	mux.HandleFunc("GET /v1/sessions/{sessionID}/stream", handler.StreamSession)
}

func registerSetupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/sessions/{sessionID}/teams", handler.AddTeam)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/participants", handler.AddParticipant)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/bets", handler.AddBet)
	mux.HandleFunc("DELETE /v1/sessions/{sessionID}/bets/{betKey}", handler.RemoveBet)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/custom-bets", handler.AddCustomBet)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/players", handler.AddPlayers)
	mux.HandleFunc("PUT /v1/sessions/{sessionID}/selection", handler.SelectPlayers)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/assignments/random", handler.AssignPlayersRandomly)
	mux.HandleFunc("PUT /v1/sessions/{sessionID}/assignments/{playerID}", handler.AssignPlayer)
}

func registerPlayRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/sessions/{sessionID}/start", handler.StartSession)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/finish", handler.FinishSession)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/events", handler.RecordEvent)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/custom-events", handler.RecordCustomEvent)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/substitutions", handler.SubstitutePlayer)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/undo", handler.UndoLastEvent)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("PUT /v1/sessions/{sessionID}/live", handler.SetLiveMode)
	mux.HandleFunc("POST /v1/sessions/{sessionID}/live-events", handler.RecordLiveEvent)
	// Forces one feed poll for the session outside the sync loop schedule.
	mux.HandleFunc("POST /v1/sessions/{sessionID}/live/sync", handler.SyncLiveSession)
}
