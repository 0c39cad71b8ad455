package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/events"
)

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"listed origin", []string{"http://localhost:8080"}, "http://localhost:8080", true},
		{"case insensitive", []string{"http://LOCALHOST:8080"}, "http://localhost:8080", true},
		{"unlisted origin", []string{"http://localhost:8080"}, "http://evil.test", false},
		{"wildcard", []string{"*"}, "http://anything.test", true},
		{"no origin header", []string{"http://localhost:8080"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := originChecker(tt.allowed)
			require.NotNil(t, check)
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, check(r))
		})
	}

	assert.Nil(t, originChecker(nil))
}

func TestHandler_UpgradeAndReceive(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)
	hub.Start()
	t.Cleanup(hub.Stop)

	cfg := config.WebSocketConfig{ReadBufferSize: 1024, WriteBufferSize: 1024}
	srv := httptest.NewServer(NewHandler(hub, cfg, []string{"*"}, logger))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello events.Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, events.MessageTypeConnection, hello.Type)

	require.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastUpdate("analysis:complete", map[string]string{"pass_id": "p1"})

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "analysis:complete", msg.Type)
	assert.Equal(t, "p1", msg.Data["pass_id"])

	conn.Close()
	require.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(NewHandler(hub, config.WebSocketConfig{}, []string{"http://localhost:8080"}, nil))
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.GetClientCount())
}
