package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dom/notes-api/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

// Client is one websocket connection bound to the session token it was
// opened with. It is closed when that token expires or is logged out.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	userID    uuid.UUID
	tokenHash string
	expiresAt time.Time
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, token string, expiresAt time.Time) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		userID:    userID,
		tokenHash: domain.HashToken(token),
		expiresAt: expiresAt,
	}
}

func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// ReadPump drains the connection so that pongs and close frames are seen.
// Clients never send anything meaningful.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed",
					slog.String("user_id", c.userID.String()),
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	expiry := time.NewTimer(time.Until(c.expiresAt))
	defer func() {
		ticker.Stop()
		expiry.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-expiry.C:
			c.writeSessionEnd("expired")
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeSessionEnd(reason string) {
	msg, _ := NewMessage(MessageTypeSessionEnd, SessionEndPayload{Reason: reason})
	data, _ := json.Marshal(msg)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.TextMessage, data)
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}

// Send queues msg without blocking. It reports false when the client's
// buffer is full.
func (c *Client) Send(msg *Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("failed to marshal message", slog.String("error", err.Error()))
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close closes the send channel; WritePump then sends a close frame.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
