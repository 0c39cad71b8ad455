package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"salespulse/internal/config"
	"salespulse/internal/infrastructure"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBuffer = 256
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn Connection

	// Buffered channel of outbound messages
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	pingPeriod time.Duration
	pongWait   time.Duration

	logger *slog.Logger

	messagesSent     int64
	messagesReceived int64
}

// NewClient creates a client for conn. Ping timing comes from cfg; zero values
// fall back to the defaults.
func NewClient(hub *Hub, conn Connection, cfg config.WebSocketConfig, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		pingPeriod:  pingPeriod,
		pongWait:    pongWait,
		logger:      logger,
	}
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// ReadPump drains inbound frames until the peer goes away. Clients only
// receive; inbound payloads other than keepalives are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
		c.logger.DebugContext(c.context(), "read pump stopped",
			slog.Int64("messages_received", c.messagesReceived))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "unexpected websocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived++
	}
}

// WritePump pumps messages from the hub to the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.context(), "write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.WarnContext(c.context(), "websocket write failed",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// gorillaConn adapts *websocket.Conn to Connection.
type gorillaConn struct {
	*websocket.Conn
}

func (g gorillaConn) RemoteAddr() string {
	return g.Conn.RemoteAddr().String()
}
