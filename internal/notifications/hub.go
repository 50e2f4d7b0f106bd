package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerAdmin = 8
	maxTotalConns    = 1000
)

var (
	ErrTooManyConnections     = errors.New("server connection limit reached")
	ErrTooManyUserConnections = errors.New("user connection limit reached")
	ErrHubClosed              = errors.New("hub is shut down")
)

// AdminHub tracks admin WebSocket connections and broadcasts moderation
// events to all of them.
type AdminHub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

func NewAdminHub() *AdminHub {
	return &AdminHub{conns: make(map[uint]map[*Client]struct{})}
}

// Name identifies the hub in metrics.
func (h *AdminHub) Name() string { return "admin" }

// Register adds a connection for userID, enforcing per-admin and global limits.
func (h *AdminHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrTooManyConnections
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerAdmin {
		return nil, ErrTooManyUserConnections
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.total++
	observability.WebSocketConnections.Inc()
	return client, nil
}

// Unregister removes the client and closes its send channel. Safe to call twice.
func (h *AdminHub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	h.total--
	observability.WebSocketConnections.Dec()
	close(client.Send)
}

// Count returns the number of registered connections.
func (h *AdminHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// BroadcastAll queues message on every connected client.
func (h *AdminHub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// PublishModerationEvent delivers ev to the admins connected to this
// instance. Used when Redis is not available to relay events.
func (h *AdminHub) PublishModerationEvent(_ context.Context, ev ModerationEvent) error {
	payload, err := ev.Encode()
	if err != nil {
		return err
	}
	h.BroadcastAll(payload)
	return nil
}

// StartWiring forwards every event published through n to this hub's clients.
func (h *AdminHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartModerationSubscriber(ctx, func(payload string) {
		if _, err := DecodeModerationEvent([]byte(payload)); err != nil {
			slog.Warn("dropping malformed moderation event", "error", err)
			return
		}
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown sends a close frame to every client and rejects new registrations.
func (h *AdminHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for userID, clients := range h.conns {
		for c := range clients {
			if c.Conn != nil {
				if err := c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
					slog.Warn("failed to write close message", "user_id", userID, "error", err)
				}
				_ = c.Conn.Close()
			}
			close(c.Send)
			observability.WebSocketConnections.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.total = 0
	return nil
}
