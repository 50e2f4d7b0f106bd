package notifications

import (
	"log/slog"
	"time"

	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// Socket timing. pingEvery must stay below readTimeout so a healthy peer's
// pong always arrives before the read deadline.
const (
	writeTimeout   = 10 * time.Second
	readTimeout    = time.Minute
	pingEvery      = readTimeout * 9 / 10
	maxInboundSize = 1024
	sendBuffer     = 64
)

var droppedNotice = []byte(`{"type":"messages_dropped","reason":"buffer_full"}`)

// Client is one admin WebSocket connection registered with an AdminHub.
type Client struct {
	hub    *AdminHub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID uint
}

func newClient(hub *AdminHub, conn *websocket.Conn, userID uint) *Client {
	return &Client{hub: hub, Conn: conn, UserID: userID, Send: make(chan []byte, sendBuffer)}
}

func (c *Client) write(kind int, data []byte) error {
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.Conn.WriteMessage(kind, data)
}

func (c *Client) extendRead(string) error {
	return c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
}

// ReadPump blocks until the peer goes away, then unregisters the client.
// Admin sockets are push-only so inbound frames are discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxInboundSize)
	_ = c.extendRead("")
	c.Conn.SetPongHandler(c.extendRead)

	for {
		_, _, err := c.Conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			slog.Warn("admin websocket read failed", "user_id", c.UserID, "error", err)
		}
		return
	}
}

// WritePump forwards Send to the socket and pings on an interval. It exits
// when Send is closed or any write fails.
func (c *Client) WritePump() {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	defer func() { _ = c.Conn.Close() }()

	for {
		var err error
		select {
		case msg, open := <-c.Send:
			if !open {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.write(websocket.TextMessage, msg)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

// TrySend never blocks. When the buffer is full the message is dropped and a
// messages_dropped notice is queued, if there is room, so the UI refetches.
func (c *Client) TrySend(message []byte) {
	hub := c.hub.Name()
	defer func() {
		// Send was closed by Unregister or Shutdown.
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(hub, "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
		return
	default:
	}

	observability.WebSocketBackpressureDrops.WithLabelValues(hub, "full").Inc()
	slog.Warn("admin websocket buffer full, dropped message", "user_id", c.UserID)
	select {
	case c.Send <- droppedNotice:
	default:
	}
}
