package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"salespulse/internal/config"
)

func TestInitializeOTel_PrometheusEndpoint(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "none"

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Tracer)

	metrics, err := CreateAnalysisMetrics(providers.Meter)
	require.NoError(t, err)
	RecordPassMetrics(context.Background(), metrics, PassOutcome{PassID: "p-1", Records: 3, Duration: time.Millisecond})

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis_passes_total")
}

func TestInitializeOTel_Twice(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "none"

	for i := 0; i < 2; i++ {
		providers, err := InitializeOTel(cfg, nil)
		require.NoError(t, err)
		require.NoError(t, providers.Shutdown(context.Background()))
	}
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, nil)
	assert.Error(t, err)
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		ServiceName:    "sales-test",
		TracingEnabled: false,
		TraceExporter:  "stdout",
		MetricsEnabled: true,
	})

	assert.Equal(t, "sales-test", cfg.ServiceName)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.False(t, cfg.EnableTracing)
	assert.True(t, cfg.EnableMetrics)
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestRecordPassMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := CreateAnalysisMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	RecordPassMetrics(ctx, metrics, PassOutcome{
		PassID:   "p-1",
		Records:  12,
		Alerts:   map[string]int{"warning": 3, "danger": 1},
		Duration: 20 * time.Millisecond,
	})
	RecordPassMetrics(ctx, metrics, PassOutcome{PassID: "p-2", Err: errors.New("bad source")})
	RecordSourceFailure(ctx, metrics, "may.csv")

	sums := collect(t, reader)
	assert.Equal(t, int64(2), sums["analysis_passes_total"])
	assert.Equal(t, int64(12), sums["analysis_records_ingested_total"])
	assert.Equal(t, int64(4), sums["analysis_alerts_emitted_total"])
	assert.Equal(t, int64(1), sums["analysis_source_failures_total"])
}

func TestRecordPassMetrics_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordPassMetrics(context.Background(), nil, PassOutcome{})
		RecordSourceFailure(context.Background(), nil, "x.csv")
	})
}

func TestTraceIDFromSpan(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "none"
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "analysis.pass")
	defer span.End()

	id := TraceIDFromContext(ctx)
	assert.Len(t, id, 32)
	assert.Equal(t, id, GetTraceID(ctx))

	assert.NotPanics(t, func() {
		SetSpanAttributes(ctx, map[string]interface{}{"records": 3, "source": "a.csv", "ok": true})
		RecordError(ctx, errors.New("boom"))
	})
}
