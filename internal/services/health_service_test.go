package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

type fixedClients int

func (c fixedClients) GetClientCount() int { return int(c) }

func TestHealthService_HealthAndLiveness(t *testing.T) {
	hs := NewHealthService("1.2.3", "", nil, nil, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	assert.Equal(t, "1.2.3", hs.Version()["version"])
}

func TestHealthService_Readiness(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.May, 10, 1),
	}, nil)
	svc := newTestService(t, ingester)

	hs := NewHealthService("1.0.0", t.TempDir(), svc, fixedClients(3), nil)

	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "no dataset loaded", ready.Services["analysis"].(ServiceHealth).Message)
	assert.Equal(t, "3 clients connected", ready.Services["websocket"].(ServiceHealth).Message)

	result, err := svc.Run(context.Background(), sources("a.csv"), domain.Filter{})
	require.NoError(t, err)

	ready = hs.ReadinessCheck(context.Background())
	assert.Contains(t, ready.Services["analysis"].(ServiceHealth).Message, result.ID)
}

func TestHealthService_NotReady(t *testing.T) {
	hs := NewHealthService("1.0.0", "/does/not/exist", nil, nil, nil)
	ready := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", ready.Status)
}
