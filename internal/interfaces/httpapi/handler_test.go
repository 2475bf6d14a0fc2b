package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchbet/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchbet/internal/platform/id"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"github.com/riskibarqy/matchbet/internal/usecase"
)

type testEnvelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

type testServer struct {
	srv   *httptest.Server
	games *usecase.GameService
	hub   *SessionHub
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	logger := logging.NewNop()
	games := usecase.NewGameService(memory.NewSessionRepository(), id.NewSequenceGenerator("t"), usecase.GameServiceConfig{}, logger)
	hub := NewSessionHub([]string{"*"}, logger)
	games.SetNotifier(hub)

	srv := httptest.NewServer(NewRouter(NewHandler(games, nil, hub, logger), logger, []string{"*"}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return testServer{srv: srv, games: games, hub: hub}
}

func call[T any](t *testing.T, ts testServer, method, path, body string) (int, testEnvelope[T]) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out testEnvelope[T]
	if err := sonic.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal %s %s body %q: %v", method, path, raw, err)
	}
	return resp.StatusCode, out
}

func mustStatus(t *testing.T, got, want int, err *googleErrorBody) {
	t.Helper()
	if got != want {
		if err != nil {
			t.Fatalf("expected status %d, got %d (%s: %s)", want, got, err.Status, err.Message)
		}
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

func balances(s sessionDTO) map[string]string {
	out := make(map[string]string, len(s.Participants))
	for _, p := range s.Participants {
		out[p.Name] = p.Balance
	}
	return out
}

func TestHandler_SessionFlow(t *testing.T) {
	ts := newTestServer(t)

	status, created := call[sessionDTO](t, ts, http.MethodPost, "/v1/sessions", `{"name":"Derby night"}`)
	mustStatus(t, status, http.StatusCreated, created.Error)
	if created.APIVersion != "2.0" || created.Data.Phase != "setup" {
		t.Fatalf("unexpected created session %+v", created)
	}
	base := "/v1/sessions/" + created.Data.ID

	setup := []struct {
		path string
		body string
	}{
		{path: "/teams", body: `{"id":"ars","name":"Arsenal","short":"ARS","color":"#EF0107"}`},
		{path: "/teams", body: `{"id":"tot","name":"Tottenham","short":"TOT","color":"#132257"}`},
		{path: "/bets", body: `{"type":"goal","amount":5}`},
		{path: "/bets", body: `{"type":"yellowCard","amount":"-2"}`},
		{path: "/custom-bets", body: `{"name":"Hat Trick Celebration","amount":15}`},
		{path: "/players", body: `{"players":[{"id":"x","name":"Bukayo Saka","teamId":"ars","position":"FWD"},{"id":"z","name":"Son Heung-min","teamId":"tot","position":"FWD"}]}`},
	}
	for _, step := range setup {
		status, resp := call[sessionDTO](t, ts, http.MethodPost, base+step.path, step.body)
		mustStatus(t, status, http.StatusCreated, resp.Error)
	}

	status, alice := call[participantDTO](t, ts, http.MethodPost, base+"/participants", `{"name":"Alice"}`)
	mustStatus(t, status, http.StatusCreated, alice.Error)
	status, bob := call[participantDTO](t, ts, http.MethodPost, base+"/participants", `{"name":"Bob"}`)
	mustStatus(t, status, http.StatusCreated, bob.Error)

	status, dup := call[participantDTO](t, ts, http.MethodPost, base+"/participants", `{"name":"Alice"}`)
	mustStatus(t, status, http.StatusConflict, dup.Error)

	status, assigned := call[sessionDTO](t, ts, http.MethodPut, base+"/assignments/x", `{"participantId":"`+alice.Data.ID+`"}`)
	mustStatus(t, status, http.StatusOK, assigned.Error)
	status, assigned = call[sessionDTO](t, ts, http.MethodPut, base+"/assignments/z", `{"participantId":"`+bob.Data.ID+`"}`)
	mustStatus(t, status, http.StatusOK, assigned.Error)
	if len(assigned.Data.Bets) != 3 || len(assigned.Data.Teams) != 2 {
		t.Fatalf("unexpected setup state bets=%d teams=%d", len(assigned.Data.Bets), len(assigned.Data.Teams))
	}

	status, recorded := call[outcomeResponseDTO](t, ts, http.MethodPost, base+"/events", `{"playerId":"x","type":"goal","minute":12}`)
	mustStatus(t, status, http.StatusCreated, recorded.Error)
	if !recorded.Data.Outcome.Applied || recorded.Data.Outcome.OwnerID != alice.Data.ID {
		t.Fatalf("unexpected outcome %+v", recorded.Data.Outcome)
	}
	got := balances(recorded.Data.Session)
	if got["Alice"] != "5.00" || got["Bob"] != "-5.00" || recorded.Data.Session.TotalBalance != "0.00" {
		t.Fatalf("unexpected balances %+v total=%s", got, recorded.Data.Session.TotalBalance)
	}
	if len(recorded.Data.Session.Ledger) != 1 || recorded.Data.Session.Ledger[0].Event == nil {
		t.Fatalf("expected one event in ledger, got %+v", recorded.Data.Session.Ledger)
	}

	status, stats := call[[]playerStatisticsDTO](t, ts, http.MethodGet, base+"/statistics", "")
	mustStatus(t, status, http.StatusOK, stats.Error)
	if len(stats.Data) != 2 {
		t.Fatalf("expected 2 player statistics, got %d", len(stats.Data))
	}

	status, undone := call[undoResponseDTO](t, ts, http.MethodPost, base+"/undo", "")
	mustStatus(t, status, http.StatusOK, undone.Error)
	if !undone.Data.Undone || undone.Data.Kind != "event" {
		t.Fatalf("unexpected undo result %+v", undone.Data)
	}
	got = balances(undone.Data.Session)
	if got["Alice"] != "0.00" || got["Bob"] != "0.00" {
		t.Fatalf("expected balances reset after undo, got %+v", got)
	}

	status, listed := call[[]sessionSummaryDTO](t, ts, http.MethodGet, "/v1/sessions", "")
	mustStatus(t, status, http.StatusOK, listed.Error)
	if len(listed.Data) != 1 || listed.Data[0].Participants != 2 {
		t.Fatalf("unexpected session list %+v", listed.Data)
	}

	status, deleted := call[map[string]string](t, ts, http.MethodDelete, base, "")
	mustStatus(t, status, http.StatusOK, deleted.Error)
	status, missing := call[sessionDTO](t, ts, http.MethodGet, base, "")
	mustStatus(t, status, http.StatusNotFound, missing.Error)
}

func TestHandler_RejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)

	_, created := call[sessionDTO](t, ts, http.MethodPost, "/v1/sessions", `{"name":"Cup final"}`)
	base := "/v1/sessions/" + created.Data.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "malformed json", method: http.MethodPost, path: "/v1/sessions", body: `{"name":`, status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/v1/sessions", body: `{"name":"x","owner":"y"}`, status: http.StatusBadRequest},
		{name: "missing name", method: http.MethodPost, path: "/v1/sessions", body: `{}`, status: http.StatusBadRequest},
		{name: "unknown session", method: http.MethodGet, path: "/v1/sessions/nope", status: http.StatusNotFound},
		{name: "unknown bet type", method: http.MethodPost, path: base + "/bets", body: `{"type":"corner","amount":1}`, status: http.StatusBadRequest},
		{name: "zero amount", method: http.MethodPost, path: base + "/bets", body: `{"type":"goal","amount":0}`, status: http.StatusBadRequest},
		{name: "bad position", method: http.MethodPost, path: base + "/players", body: `{"players":[{"id":"x","name":"X","position":"ST"}]}`, status: http.StatusBadRequest},
		{name: "negative minute", method: http.MethodPost, path: base + "/events", body: `{"playerId":"x","type":"goal","minute":-1}`, status: http.StatusBadRequest},
		{name: "live mode without match", method: http.MethodPut, path: base + "/live", body: `{"enabled":true}`, status: http.StatusBadRequest},
		{name: "manual sync without feed", method: http.MethodPost, path: base + "/live/sync", status: http.StatusServiceUnavailable},
		{name: "stream unknown session", method: http.MethodGet, path: "/v1/sessions/nope/stream", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := call[map[string]any](t, ts, tt.method, tt.path, tt.body)
			if status != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, status)
			}
			if resp.Error == nil || resp.Error.Code != tt.status {
				t.Fatalf("expected error envelope with code %d, got %+v", tt.status, resp.Error)
			}
		})
	}
}

func TestHandler_RandomAssignmentAcceptsEmptyBody(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	snap, err := ts.games.CreateSession(ctx, usecase.CreateSessionInput{Name: "Friday"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	base := "/v1/sessions/" + snap.ID
	call[sessionDTO](t, ts, http.MethodPost, base+"/players", `{"players":[{"id":"a","name":"A"},{"id":"b","name":"B"}]}`)
	call[participantDTO](t, ts, http.MethodPost, base+"/participants", `{"name":"Alice"}`)
	call[participantDTO](t, ts, http.MethodPost, base+"/participants", `{"name":"Bob"}`)

	status, seeded := call[randomAssignResponseDTO](t, ts, http.MethodPost, base+"/assignments/random", `{"seed":42}`)
	mustStatus(t, status, http.StatusOK, seeded.Error)
	if seeded.Data.Seed != 42 {
		t.Fatalf("expected seed 42 to be echoed, got %d", seeded.Data.Seed)
	}

	status, unseeded := call[randomAssignResponseDTO](t, ts, http.MethodPost, base+"/assignments/random", "")
	mustStatus(t, status, http.StatusOK, unseeded.Error)
	owned := 0
	for _, p := range unseeded.Data.Session.Participants {
		owned += len(p.ActivePlayers)
	}
	if owned != 2 {
		t.Fatalf("expected both players assigned, got %d", owned)
	}
}

func TestRequestID_EchoesOrAssigns(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requestIDFromContext(r.Context()); !ok {
			t.Fatalf("expected request id in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
	if got := rec.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}
}

func TestResolveClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := resolveClientIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote addr ip, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := resolveClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected first forwarded ip, got %q", got)
	}
}
