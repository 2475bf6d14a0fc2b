package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"github.com/riskibarqy/matchbet/internal/usecase"
)

const (
	streamWriteWait      = 10 * time.Second
	streamPongWait       = 60 * time.Second
	streamPingPeriod     = (streamPongWait * 9) / 10
	streamMaxMessageSize = 512
	streamSendBuffer     = 16

	streamMessageSession = "session"
	streamMessageDeleted = "deleted"
)

type streamMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Session   *sessionDTO `json:"session,omitempty"`
}

type streamClient struct {
	sessionID string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *streamClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// SessionHub fans stored session changes out to websocket subscribers of that session.
// Slow subscribers lose intermediate updates; every message carries the full session.
type SessionHub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*streamClient]struct{}
	closed  bool
}

var _ usecase.SessionNotifier = (*SessionHub)(nil)

func NewSessionHub(allowedOrigins []string, logger *logging.Logger) *SessionHub {
	if logger == nil {
		logger = logging.Default()
	}
	policy := newOriginPolicy(allowedOrigins)

	return &SessionHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     policy.checkWebsocketOrigin,
		},
		clients: make(map[string]map[*streamClient]struct{}),
	}
}

func (h *SessionHub) SessionChanged(ctx context.Context, snap gamesession.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers := h.clients[snap.ID]
	if len(subscribers) == 0 {
		return
	}
	dto := sessionToDTO(snap)
	payload, err := encodeStreamMessage(streamMessage{Type: streamMessageSession, SessionID: snap.ID, Session: &dto})
	if err != nil {
		h.logger.ErrorContext(ctx, "encode stream message failed", "session_id", snap.ID, "error", err)
		return
	}
	for c := range subscribers {
		select {
		case c.send <- payload:
		default:
			h.logger.WarnContext(ctx, "dropping session update for slow subscriber", "session_id", snap.ID)
		}
	}
}

func (h *SessionHub) SessionDeleted(ctx context.Context, sessionID string) {
	payload, err := encodeStreamMessage(streamMessage{Type: streamMessageDeleted, SessionID: sessionID})
	if err != nil {
		h.logger.ErrorContext(ctx, "encode stream message failed", "session_id", sessionID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[sessionID] {
		select {
		case c.send <- payload:
		default:
		}
		c.close()
	}
	delete(h.clients, sessionID)
}

// Close disconnects every subscriber and rejects new ones.
func (h *SessionHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for sessionID, subscribers := range h.clients {
		for c := range subscribers {
			c.close()
		}
		delete(h.clients, sessionID)
	}
}

func (h *SessionHub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *SessionHub) register(sessionID string) (*streamClient, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}

	c := &streamClient{
		sessionID: sessionID,
		send:      make(chan []byte, streamSendBuffer),
		done:      make(chan struct{}),
	}
	subscribers, ok := h.clients[sessionID]
	if !ok {
		subscribers = make(map[*streamClient]struct{})
		h.clients[sessionID] = subscribers
	}
	subscribers[c] = struct{}{}
	return c, true
}

func (h *SessionHub) unregister(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers := h.clients[c.sessionID]
	delete(subscribers, c)
	if len(subscribers) == 0 {
		delete(h.clients, c.sessionID)
	}
}

func encodeStreamMessage(msg streamMessage) ([]byte, error) {
	payload, err := sonic.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode stream message: %w", err)
	}
	return payload, nil
}

// StreamSession upgrades to a websocket that receives the session now and after every stored change.
func (h *Handler) StreamSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSessionSpan(r, "StreamSession")
	defer span.End()

	sessionID := r.PathValue("sessionID")
	if h.hub == nil {
		writeError(ctx, w, fmt.Errorf("%w: session streaming is disabled", usecase.ErrDependencyUnavailable))
		return
	}
	if _, err := h.gameService.GetSession(ctx, sessionID); err != nil {
		writeError(ctx, w, err)
		return
	}

	conn, err := h.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	defer conn.Close()

	client, ok := h.hub.register(sessionID)
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(streamWriteWait))
		return
	}
	defer h.hub.unregister(client)

	// Registered before reading so no change between the two is missed.
	snap, err := h.gameService.GetSession(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "load session for stream failed", "session_id", sessionID, "error", err)
		return
	}
	dto := sessionToDTO(snap)
	initial, err := encodeStreamMessage(streamMessage{Type: streamMessageSession, SessionID: sessionID, Session: &dto})
	if err != nil {
		return
	}
	if err := writeStreamFrame(conn, websocket.TextMessage, initial); err != nil {
		return
	}

	h.logger.InfoContext(ctx, "session stream opened", "session_id", sessionID, "subscribers", h.hub.Subscribers(sessionID))
	go readStream(conn, client)
	writeStream(conn, client)
}

// readStream only services control frames; client text frames are ignored.
func readStream(conn *websocket.Conn, client *streamClient) {
	defer client.close()

	conn.SetReadLimit(streamMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeStream(conn *websocket.Conn, client *streamClient) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-client.send:
			if err := writeStreamFrame(conn, websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := writeStreamFrame(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.done:
			for {
				select {
				case msg := <-client.send:
					if err := writeStreamFrame(conn, websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(streamWriteWait))
					return
				}
			}
		}
	}
}

func writeStreamFrame(conn *websocket.Conn, messageType int, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteMessage(messageType, payload)
}
