package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"roomchat/internal/application/constant"
	"roomchat/internal/domain/events"
	"roomchat/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
)

// Client binds one websocket connection to the gateway. It satisfies
// usecase.GatewayClient; delivery goes through a buffered channel drained by
// writePump, never by writing to the conn directly.
type Client struct {
	connID uuid.UUID
	userID uuid.UUID

	conn    *websocket.Conn
	gateway usecase.GatewayUsecase

	send chan []byte
	once sync.Once
}

func NewClient(userID uuid.UUID, conn *websocket.Conn, gateway usecase.GatewayUsecase) *Client {
	return &Client{
		connID:  uuid.New(),
		userID:  userID,
		conn:    conn,
		gateway: gateway,
		send:    make(chan []byte, 256),
	}
}

func (c *Client) ConnID() uuid.UUID { return c.connID }

func (c *Client) UserID() uuid.UUID { return c.userID }

// Send queues a payload without blocking. A client whose buffer is full is
// too slow to keep: the connection is closed and readPump tears it down.
func (c *Client) Send(payload []byte) {
	select {
	case c.send <- payload:
	default:
		slog.Warn(
			"ws send buffer full, dropping connection",
			slog.Any(constant.ConnID, c.connID),
			slog.Any(constant.UserID, c.userID),
		)
		c.close()
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		_ = c.conn.Close()
	})
}

// ReadPump reads events off the connection and dispatches them to the
// gateway. It blocks until the connection dies, then runs the disconnect
// cleanup exactly once.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.gateway.HandleDisconnect(ctx, c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn(
					"websocket read error",
					slog.Any(constant.ConnID, c.connID),
					slog.Any(constant.Error, err),
				)
			}
			return
		}

		var event events.Event
		if err := json.Unmarshal(msg, &event); err != nil {
			slog.Warn(
				"unmarshal websocket event",
				slog.Any(constant.ConnID, c.connID),
				slog.Any(constant.Error, err),
			)
			continue
		}

		c.gateway.HandleEvent(ctx, c, event)
	}
}

// WritePump drains the send buffer onto the connection and keeps the
// heartbeat going. Runs in its own goroutine per connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
