package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics holds the websocket instruments.
type OTelMetrics struct {
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram
	messagesSent       metric.Int64Counter
	droppedMessages    metric.Int64Counter
}

// NewOTelMetrics creates the websocket instruments on meter.
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	if m.connectionsTotal, err = meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections"),
	); err != nil {
		return nil, err
	}
	if m.connectionsActive, err = meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections"),
	); err != nil {
		return nil, err
	}
	if m.connectionDuration, err = meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Lifetime of WebSocket connections"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.messagesSent, err = meter.Int64Counter(
		"websocket_messages_sent_total",
		metric.WithDescription("Messages queued to WebSocket clients"),
	); err != nil {
		return nil, err
	}
	if m.droppedMessages, err = meter.Int64Counter(
		"websocket_dropped_messages_total",
		metric.WithDescription("Messages dropped because a client buffer was full"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *OTelMetrics) recordConnect(ctx context.Context) {
	if m == nil {
		return
	}
	m.connectionsTotal.Add(ctx, 1)
	m.connectionsActive.Add(ctx, 1)
}

func (m *OTelMetrics) recordDisconnect(ctx context.Context, lifetime time.Duration) {
	if m == nil {
		return
	}
	m.connectionsActive.Add(ctx, -1)
	m.connectionDuration.Record(ctx, lifetime.Seconds())
}

func (m *OTelMetrics) recordBroadcast(ctx context.Context, messageType string, delivered, dropped int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("message_type", messageType))
	m.messagesSent.Add(ctx, int64(delivered), attrs)
	if dropped > 0 {
		m.droppedMessages.Add(ctx, int64(dropped), attrs)
	}
}
