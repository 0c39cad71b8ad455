package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salespulse/internal/analytics"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
	"salespulse/pkg/contracts/events"
)

// EventAnalysisComplete is the notification type sent after a pass is
// published.
const EventAnalysisComplete = string(events.MessageTypeAnalysisComplete)

// Broadcaster receives a notification for every published pass.
type Broadcaster interface {
	BroadcastUpdateWithTrace(updateType, subtype, action string, data interface{}, traceID string)
}

// Ingester turns sources into one merged record set.
type Ingester interface {
	Ingest(ctx context.Context, sources []dataprocessing.Source) ([]domain.SalesRecord, error)
}

// PassSummary is the payload of an analysis:complete notification. It carries
// headline numbers only, never partial views.
type PassSummary struct {
	PassID      string         `json:"pass_id"`
	Records     int            `json:"records"`
	TotalSales  float64        `json:"total_sales"`
	TotalProfit float64        `json:"total_profit"`
	Alerts      int            `json:"alerts"`
	Insights    int            `json:"insights"`
	Filter      domain.Filter  `json:"filter"`
	Period      *domain.Period `json:"period,omitempty"`
}

// snapshot is an immutable published dataset and the pass computed from it.
type snapshot struct {
	records []domain.SalesRecord
	result  *domain.AnalysisResult
}

// AnalysisService runs passes and keeps the last published one. Passes are
// serialized; readers never block and never see a half-built pass.
type AnalysisService struct {
	ingester    Ingester
	options     analytics.Options
	broadcaster Broadcaster
	metrics     *infrastructure.AnalysisMetrics
	logger      *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// AnalysisServiceOption customizes an AnalysisService.
type AnalysisServiceOption func(*AnalysisService)

// WithBroadcaster sends a notification after each published pass.
func WithBroadcaster(b Broadcaster) AnalysisServiceOption {
	return func(s *AnalysisService) { s.broadcaster = b }
}

// WithMetrics records pass metrics.
func WithMetrics(m *infrastructure.AnalysisMetrics) AnalysisServiceOption {
	return func(s *AnalysisService) { s.metrics = m }
}

// WithClock overrides the evaluation clock of the stale-invoice rule.
func WithClock(now func() time.Time) AnalysisServiceOption {
	return func(s *AnalysisService) { s.options.Now = now }
}

// NewAnalysisService creates the service. rules carries the alert and insight
// thresholds; its Filter is ignored.
func NewAnalysisService(ingester Ingester, rules analytics.Options, logger *slog.Logger, opts ...AnalysisServiceOption) *AnalysisService {
	rules.Filter = domain.Filter{}

	s := &AnalysisService{
		ingester: ingester,
		options:  rules,
		logger:   infrastructure.WithComponent(logger, "analysis_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ingests sources as a new dataset, replacing the current one, and
// publishes a pass filtered by filter. On failure the current pass stays
// published and the error is returned.
func (s *AnalysisService) Run(ctx context.Context, sources []dataprocessing.Source, filter domain.Filter) (*domain.AnalysisResult, error) {
	return s.ingestAndPublish(ctx, sources, filter, false)
}

// Append ingests sources, merges them into the current dataset and publishes
// a fresh pass over the combined records.
func (s *AnalysisService) Append(ctx context.Context, sources []dataprocessing.Source, filter domain.Filter) (*domain.AnalysisResult, error) {
	return s.ingestAndPublish(ctx, sources, filter, true)
}

// Refilter runs a pass over the current dataset with another filter. The
// result is returned only; the published pass and its subscribers are left
// alone, so views and exports of the dataset stay unfiltered.
func (s *AnalysisService) Refilter(ctx context.Context, filter domain.Filter) (*domain.AnalysisResult, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoDataset
	}

	ctx, span := infrastructure.Tracer().Start(ctx, "analysis.refilter")
	defer span.End()

	result := s.analyze(ctx, snap.records, filter)
	s.logger.DebugContext(ctx, "filtered pass computed",
		slog.String("pass_id", result.ID),
		slog.String("department", filter.Department),
		slog.Int("filtered_records", len(result.Records)))
	return result, nil
}

// Current returns the last published pass.
func (s *AnalysisService) Current() (*domain.AnalysisResult, bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap.result, true
}

// HasDataset reports whether a dataset has been published.
func (s *AnalysisService) HasDataset() bool {
	return s.current.Load() != nil
}

func (s *AnalysisService) ingestAndPublish(ctx context.Context, sources []dataprocessing.Source, filter domain.Filter, appendMode bool) (*domain.AnalysisResult, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := infrastructure.Tracer().Start(ctx, "analysis.pass",
		trace.WithAttributes(
			attribute.Int("sources", len(sources)),
			attribute.Bool("append", appendMode),
		))
	defer span.End()

	start := time.Now()
	s.logger.InfoContext(ctx, "analysis pass started",
		slog.Int("sources", len(sources)),
		slog.Bool("append", appendMode))

	ingestCtx, ingestSpan := infrastructure.Tracer().Start(ctx, "analysis.ingest")
	records, err := s.ingester.Ingest(ingestCtx, sources)
	ingestSpan.End()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordPassMetrics(ctx, s.metrics, infrastructure.PassOutcome{
			Duration: time.Since(start),
			Err:      err,
		})
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "analysis pass failed, keeping previous result",
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("source", apperrors.SourceOf(err)))
		return nil, fmt.Errorf("ingest sources: %w", err)
	}

	if appendMode {
		if prev := s.current.Load(); prev != nil {
			records = dataprocessing.Merge(prev.records, records)
		}
	}

	return s.publish(ctx, records, filter, start), nil
}

// analyze computes a pass over records without publishing it.
func (s *AnalysisService) analyze(ctx context.Context, records []domain.SalesRecord, filter domain.Filter) *domain.AnalysisResult {
	opts := s.options
	opts.Filter = filter

	analyzeCtx, span := infrastructure.Tracer().Start(ctx, "analysis.analyze")
	result := analytics.Analyze(records, opts)
	infrastructure.SetSpanAttributes(analyzeCtx, map[string]interface{}{
		"pass.id":           result.ID,
		"records.dataset":   len(records),
		"records.filtered":  len(result.Records),
		"filter.department": filter.Department,
	})
	span.End()
	return result
}

// publish computes a pass over records and swaps it in. Callers hold s.mu.
func (s *AnalysisService) publish(ctx context.Context, records []domain.SalesRecord, filter domain.Filter, start time.Time) *domain.AnalysisResult {
	result := s.analyze(ctx, records, filter)

	s.current.Store(&snapshot{records: records, result: result})

	alerts := make(map[string]int)
	for _, a := range result.Alerts {
		alerts[string(a.Type)]++
	}
	duration := time.Since(start)

	infrastructure.RecordPassMetrics(ctx, s.metrics, infrastructure.PassOutcome{
		PassID:   result.ID,
		Records:  len(result.Records),
		Alerts:   alerts,
		Duration: duration,
	})

	s.logger.InfoContext(ctx, "analysis pass published",
		slog.String("pass_id", result.ID),
		slog.Int("dataset_records", len(records)),
		slog.Int("filtered_records", len(result.Records)),
		slog.Int("alerts", len(result.Alerts)),
		slog.Int("insights", len(result.Insights)),
		slog.Duration("duration", duration))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastUpdateWithTrace(EventAnalysisComplete, "", "", SummaryOf(result), infrastructure.GetTraceID(ctx))
	}

	return result
}

// SummaryOf builds the notification payload of a pass.
func SummaryOf(result *domain.AnalysisResult) PassSummary {
	return PassSummary{
		PassID:      result.ID,
		Records:     result.Summary.RecordCount,
		TotalSales:  result.Summary.TotalSales,
		TotalProfit: result.Summary.TotalProfit,
		Alerts:      len(result.Alerts),
		Insights:    len(result.Insights),
		Filter:      result.Filter,
		Period:      result.Period,
	}
}
