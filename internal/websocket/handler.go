package websocket

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"salespulse/internal/config"
	"salespulse/internal/infrastructure"
)

// Handler upgrades HTTP requests to websocket clients of a hub.
type Handler struct {
	hub      *Hub
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler builds the upgrade handler. An empty allowedOrigins list accepts
// same-host requests only; "*" accepts any origin.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:    hub,
		cfg:    cfg,
		logger: infrastructure.WithComponent(logger, "websocket.handler"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil // gorilla's same-origin default
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeHTTP upgrades the connection, registers the client and starts its pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// /ws sits outside the OTel middleware, so it may arrive without a trace.
	ctx := infrastructure.EnsureTraceID(r.Context())
	traceID := infrastructure.GetTraceID(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("origin", r.Header.Get("Origin")))
		return
	}

	client := NewClient(h.hub, gorillaConn{conn}, h.cfg, traceID, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
