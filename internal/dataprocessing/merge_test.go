package dataprocessing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2025, time.May, d, 0, 0, 0, 0, time.UTC)
}

func assertNonDecreasing(t *testing.T, records []domain.SalesRecord) {
	t.Helper()
	for i := 1; i < len(records); i++ {
		if records[i].HasDate() && records[i-1].HasDate() {
			assert.False(t, records[i].Date.Before(records[i-1].Date), "record %d out of order", i)
		}
	}
}

func TestIngestor_OverlappingSourcesSortedRegardlessOfOrder(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteSalesCSV(t, dir, "a.csv",
		testutil.SalesRow{Date: "2025-05-01", Product: "Basil", Revenue: "10", Profit: "1"},
		testutil.SalesRow{Date: "2025-05-05", Product: "Basil", Revenue: "10", Profit: "1"},
		testutil.SalesRow{Date: "2025-05-09", Product: "Basil", Revenue: "10", Profit: "1"},
	)
	b := testutil.WriteSalesCSV(t, dir, "b.csv",
		testutil.SalesRow{Date: "2025-05-03", Product: "Kale", Revenue: "20", Profit: "2"},
		testutil.SalesRow{Date: "2025-05-07", Product: "Kale", Revenue: "20", Profit: "2"},
	)

	logger, _ := testutil.NewTestLogger(t)
	ingestor := NewIngestor(logger, NewParser(logger, ParserOptions{}), 2)

	forward, err := ingestor.Ingest(context.Background(), []Source{FileSource(a), FileSource(b)})
	require.NoError(t, err)
	backward, err := ingestor.Ingest(context.Background(), []Source{FileSource(b), FileSource(a)})
	require.NoError(t, err)

	require.Len(t, forward, 5)
	assertNonDecreasing(t, forward)
	assertNonDecreasing(t, backward)

	var got []string
	for _, r := range forward {
		got = append(got, r.Date.Format("02"))
	}
	assert.Equal(t, []string{"01", "03", "05", "07", "09"}, got)
}

func TestIngestor_FailedSourceIsReported(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	ingestor := NewIngestor(logger, NewParser(logger, ParserOptions{}), 4)

	var mu sync.Mutex
	var failed []string
	ingestor.OnSourceError = func(_ context.Context, source string, _ error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, source)
	}

	good := BytesSource("good.csv", []byte("Product,Total Revenue,Total Profit $\nBasil,10,1\n"))
	bad := BytesSource("bad.csv", []byte("Product,Total Revenue,Total Profit $\nBasil,10\n"))
	worse := BytesSource("worse.csv", []byte("Product\nBasil\n"))

	records, err := ingestor.Ingest(context.Background(), []Source{good, bad, worse})

	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, apperrors.IsParseError(err))
	assert.Equal(t, "bad.csv", apperrors.SourceOf(err), "first failing source in argument order")
	assert.ElementsMatch(t, []string{"bad.csv", "worse.csv"}, failed)
	assert.True(t, logs.ContainsMessage("source rejected"))
}

func TestIngestor_EmptySourceIsNotAFailure(t *testing.T) {
	ingestor := NewIngestor(nil, nil, 0)

	records, err := ingestor.Ingest(context.Background(), []Source{BytesSource("empty.csv", nil)})

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMerge(t *testing.T) {
	existing := []domain.SalesRecord{
		{Product: "Basil", Date: day(4)},
		{Product: "Kale", Date: day(10)},
	}
	incoming := []domain.SalesRecord{
		{Product: "Carrot", Date: day(4)},
		{Product: "Chard"},
		{Product: "Pepper", Date: day(1)},
	}

	merged := Merge(existing, incoming)

	var got []string
	for _, r := range merged {
		got = append(got, r.Product)
	}
	// Ties keep concatenation order; undated records go last.
	assert.Equal(t, []string{"Pepper", "Basil", "Carrot", "Kale", "Chard"}, got)
	assert.Equal(t, "Basil", existing[0].Product, "inputs untouched")
	assert.Equal(t, "Carrot", incoming[0].Product)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge())
	assert.Empty(t, Merge(nil, []domain.SalesRecord{}))
}
