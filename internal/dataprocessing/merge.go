package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"salespulse/pkg/contracts/domain"
)

// Ingestor reads several sources and merges them into one dataset.
type Ingestor struct {
	parser      *Parser
	logger      *slog.Logger
	concurrency int

	// OnSourceError, when set, is called once per source that failed to parse.
	OnSourceError func(ctx context.Context, source string, err error)
}

// NewIngestor creates an ingestor reading at most concurrency sources at once.
func NewIngestor(logger *slog.Logger, parser *Parser, concurrency int) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = NewParser(logger, ParserOptions{})
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Ingestor{
		parser:      parser,
		logger:      logger.With(slog.String("component", "ingestor")),
		concurrency: concurrency,
	}
}

// Ingest parses every source, concatenates the results in source order and
// sorts them by transaction date. Sources are read concurrently, but every
// source is parsed to completion before the merge, so the outcome does not
// depend on completion order. When several sources fail, the error of the
// first one in argument order is returned.
func (i *Ingestor) Ingest(ctx context.Context, sources []Source) ([]domain.SalesRecord, error) {
	parsed := make([][]domain.SalesRecord, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(i.concurrency)

	for idx, src := range sources {
		g.Go(func() error {
			records, err := i.parser.Parse(ctx, src)
			if err != nil {
				errs[idx] = err
				if i.OnSourceError != nil {
					i.OnSourceError(ctx, src.Name, err)
				}
				i.logger.WarnContext(ctx, "source rejected",
					slog.String("source", src.Name),
					slog.String("error", err.Error()))
				return nil
			}
			parsed[idx] = records
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := Merge(parsed...)

	i.logger.InfoContext(ctx, "sources merged",
		slog.Int("sources", len(sources)),
		slog.Int("records", len(merged)))

	return merged, nil
}

// Merge concatenates record sets in order and sorts the result by date. The
// inputs are not modified.
func Merge(sets ...[]domain.SalesRecord) []domain.SalesRecord {
	total := 0
	for _, s := range sets {
		total += len(s)
	}

	merged := make([]domain.SalesRecord, 0, total)
	for _, s := range sets {
		merged = append(merged, s...)
	}
	SortByDate(merged)
	return merged
}

// SortByDate orders records ascending by transaction date in place. The sort
// is stable and records without a date go last.
func SortByDate(records []domain.SalesRecord) {
	sort.SliceStable(records, func(a, b int) bool {
		return dateLess(records[a].Date, records[b].Date)
	})
}

func dateLess(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	default:
		return a.Before(b)
	}
}
