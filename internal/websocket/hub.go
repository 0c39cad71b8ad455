package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/events"
)

type outbound struct {
	msgType string
	payload []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
// Broadcasts are fire-and-forget: a client whose buffer is full is dropped
// rather than slowing down the others.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	logger  *slog.Logger
	metrics *OTelMetrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *OTelMetrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    metrics,
	}
}

// Start runs the hub loop in a goroutine. It is idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the hub loop and closes every client. It is idempotent.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.recordConnect(ctx)
			h.logger.InfoContext(ctx, "client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			if payload, err := encode(string(events.MessageTypeConnection), map[string]string{"status": "connected", "client_id": client.id}, client.traceID); err == nil {
				select {
				case client.send <- payload:
				default:
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				ctx := client.context()
				h.metrics.recordDisconnect(ctx, time.Since(client.connectedAt))
				h.logger.InfoContext(ctx, "client unregistered",
					slog.String("client_id", client.id),
					slog.Int("total_clients", count),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// deliver runs on the hub goroutine only.
func (h *Hub) deliver(msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered, dropped := 0, 0
	for client := range h.clients {
		select {
		case client.send <- msg.payload:
			delivered++
		default:
			dropped++
			close(client.send)
			delete(h.clients, client)
			h.logger.WarnContext(client.context(), "client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}

	h.metrics.recordBroadcast(context.Background(), msg.msgType, delivered, dropped)
	h.logger.Debug("broadcast delivered",
		slog.String("type", msg.msgType),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped))
}

func encode(msgType string, data interface{}, traceID string) ([]byte, error) {
	return json.Marshal(events.NewMessage(events.MessageType(msgType), data, traceID))
}

// BroadcastUpdate sends a typed message to every client.
func (h *Hub) BroadcastUpdate(updateType string, data interface{}) {
	h.BroadcastUpdateWithTrace(updateType, "", "", data, "")
}

// BroadcastUpdateWithTrace sends a typed message carrying a trace ID. subtype
// and action are accepted for interface compatibility and ignored when empty.
func (h *Hub) BroadcastUpdateWithTrace(updateType, subtype, action string, data interface{}, traceID string) {
	if subtype != "" || action != "" {
		data = map[string]interface{}{"subtype": subtype, "action": action, "payload": data}
	}

	payload, err := encode(updateType, data, traceID)
	if err != nil {
		h.logger.Error("failed to marshal broadcast",
			slog.String("type", updateType),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- outbound{msgType: updateType, payload: payload}:
	case <-h.quit:
	default:
		h.logger.Warn("broadcast queue full, dropping message", slog.String("type", updateType))
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}
