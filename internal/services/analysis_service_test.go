package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salespulse/internal/analytics"
	"salespulse/internal/dataprocessing"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) Ingest(ctx context.Context, sources []dataprocessing.Source) ([]domain.SalesRecord, error) {
	args := m.Called(ctx, sources)
	records, _ := args.Get(0).([]domain.SalesRecord)
	return records, args.Error(1)
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastUpdateWithTrace(updateType, subtype, action string, data interface{}, traceID string) {
	m.Called(updateType, subtype, action, data, traceID)
}

var testNow = time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, ingester Ingester, opts ...AnalysisServiceOption) *AnalysisService {
	t.Helper()
	svc, _ := newLoggedTestService(t, ingester, opts...)
	return svc
}

// newLoggedTestService also returns the handler capturing the service's logs.
func newLoggedTestService(t *testing.T, ingester Ingester, opts ...AnalysisServiceOption) (*AnalysisService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	opts = append([]AnalysisServiceOption{WithClock(func() time.Time { return testNow })}, opts...)
	return NewAnalysisService(ingester, analytics.DefaultOptions(), logger, opts...), logs
}

func sources(names ...string) []dataprocessing.Source {
	out := make([]dataprocessing.Source, len(names))
	for i, n := range names {
		out[i] = dataprocessing.BytesSource(n, nil)
	}
	return out
}

func record(product string, month time.Month, revenue, profit float64) domain.SalesRecord {
	return domain.SalesRecord{
		Product:      product,
		Date:         time.Date(2025, month, 10, 0, 0, 0, 0, time.UTC),
		TotalRevenue: revenue,
		TotalProfit:  profit,
	}
}

func TestAnalysisService_RunPublishes(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.April, 1000, 300),
		record("Carrot", time.May, 1200, 400),
	}, nil).Once()

	broadcaster := &mockBroadcaster{}
	broadcaster.On("BroadcastUpdateWithTrace", EventAnalysisComplete, "", "", mock.AnythingOfType("services.PassSummary"), mock.Anything).Once()

	svc, logs := newLoggedTestService(t, ingester, WithBroadcaster(broadcaster))
	assert.False(t, svc.HasDataset())

	result, err := svc.Run(context.Background(), sources("a.csv"), domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.RecordCount)
	assert.Equal(t, []string{"Sales increased 20.0% compared to last month."}, result.Insights)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Same(t, result, current)

	ingester.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
	testutil.AssertNoErrors(t, logs)
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "analysis pass published")
	testutil.AssertLogAttr(t, logs, "pass_id", result.ID)
}

func TestAnalysisService_FailedIngestKeepsPreviousResult(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.May, 10, 1),
	}, nil).Once()
	parseErr := apperrors.NewParseError("bad.csv", 3, errors.New("wrong number of fields"))
	ingester.On("Ingest", mock.Anything, mock.Anything).Return(nil, parseErr).Once()

	svc, logs := newLoggedTestService(t, ingester)

	first, err := svc.Run(context.Background(), sources("good.csv"), domain.Filter{})
	require.NoError(t, err)
	testutil.AssertNoErrors(t, logs)

	_, err = svc.Run(context.Background(), sources("bad.csv"), domain.Filter{})
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
	assert.Equal(t, "bad.csv", apperrors.SourceOf(err))

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Same(t, first, current)

	testutil.AssertLogContains(t, logs, slog.LevelError, "analysis pass failed")
	testutil.AssertLogAttr(t, logs, "source", "bad.csv")
	testutil.AssertLogAttr(t, logs, "error_type", string(apperrors.ErrTypeParsing))
}

func TestAnalysisService_NoSources(t *testing.T) {
	svc := newTestService(t, &mockIngester{})
	_, err := svc.Run(context.Background(), nil, domain.Filter{})
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestAnalysisService_Append(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.May, 10, 1),
	}, nil).Once()
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Kale", time.April, 20, 2),
	}, nil).Once()

	svc := newTestService(t, ingester)

	_, err := svc.Run(context.Background(), sources("may.csv"), domain.Filter{})
	require.NoError(t, err)

	result, err := svc.Append(context.Background(), sources("april.csv"), domain.Filter{})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "Kale", result.Records[0].Product)
	assert.Equal(t, "Basil", result.Records[1].Product)
	assert.Equal(t, []string{"2025-04", "2025-05"}, result.AvailableMonths)
}

func TestAnalysisService_AppendWithoutDatasetActsLikeRun(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.May, 10, 1),
	}, nil).Once()

	svc := newTestService(t, ingester)
	result, err := svc.Append(context.Background(), sources("may.csv"), domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
}

func TestAnalysisService_Refilter(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.April, 10, 1),
		record("Carrot", time.May, 20, 2),
		record("Basil", time.May, 30, 3),
	}, nil).Once()

	svc := newTestService(t, ingester)

	_, err := svc.Refilter(context.Background(), domain.Filter{Department: "Herbs"})
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = svc.Run(context.Background(), sources("a.csv"), domain.Filter{})
	require.NoError(t, err)

	may := domain.YearMonth{Year: 2025, Month: time.May}
	result, err := svc.Refilter(context.Background(), domain.Filter{Department: "Herbs", Month: &may})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.InDelta(t, 30, result.Summary.TotalSales, 1e-9)
	assert.Equal(t, []string{"Herbs", "Roots"}, result.AvailableDepartments)

	// Refiltering to everything again sees the full dataset.
	result, err = svc.Refilter(context.Background(), domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, result.Records, 3)
}

func TestAnalysisService_RefilterLeavesPublishedPassAlone(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.April, 10, 1),
		record("Carrot", time.May, 20, 2),
	}, nil).Once()

	broadcaster := &mockBroadcaster{}
	broadcaster.On("BroadcastUpdateWithTrace", EventAnalysisComplete, "", "", mock.Anything, mock.Anything).Once()

	svc, logs := newLoggedTestService(t, ingester, WithBroadcaster(broadcaster))
	published, err := svc.Run(context.Background(), sources("a.csv"), domain.Filter{})
	require.NoError(t, err)

	may := domain.YearMonth{Year: 2025, Month: time.May}
	filters := []struct {
		name   string
		filter domain.Filter
		want   int
	}{
		{"department", domain.Filter{Department: "Herbs"}, 1},
		{"month", domain.Filter{Month: &may}, 1},
		{"department and month", domain.Filter{Department: "Herbs", Month: &may}, 0},
	}
	for _, tt := range filters {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Refilter(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, result.Records, tt.want)
			assert.NotSame(t, published, result)

			current, ok := svc.Current()
			require.True(t, ok)
			assert.Same(t, published, current)
			assert.Len(t, current.Records, 2)
		})
	}

	broadcaster.AssertNumberOfCalls(t, "BroadcastUpdateWithTrace", 1)
	testutil.AssertLogContains(t, logs, slog.LevelDebug, "filtered pass computed")
	testutil.AssertNoErrors(t, logs)
}

func TestAnalysisService_ConcurrentReadersSeeCompletePasses(t *testing.T) {
	ingester := &mockIngester{}
	ingester.On("Ingest", mock.Anything, mock.Anything).Return([]domain.SalesRecord{
		record("Basil", time.April, 10, 1),
		record("Carrot", time.May, 20, 2),
	}, nil)

	svc := newTestService(t, ingester)
	_, err := svc.Run(context.Background(), sources("a.csv"), domain.Filter{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = svc.Refilter(context.Background(), domain.Filter{Department: "Herbs"})
				return
			}
			result, ok := svc.Current()
			if assert.True(t, ok) {
				assert.Equal(t, len(result.Records), result.Summary.RecordCount)
			}
		}(i)
	}
	wg.Wait()
}

func TestAnalysisService_WithRealIngestor(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	ingestor := dataprocessing.NewIngestor(logger, dataprocessing.NewParser(logger, dataprocessing.ParserOptions{}), 2)
	svc := NewAnalysisService(ingestor, analytics.DefaultOptions(), logger, WithClock(func() time.Time { return testNow }))

	csv := testutil.SalesCSV(t,
		testutil.SalesRow{Date: "2025-05-02", Product: "Carrot", Customer: "Shop", SalesRep: "Ann", Quantity: "5", Revenue: "50", Profit: "10", Percent: "20"},
		testutil.SalesRow{Date: "2025-05-01", Product: "Basil", Customer: "Shop", SalesRep: "Ann", Quantity: "1", Revenue: "100", Profit: "5", Percent: "5"},
	)

	result, err := svc.Run(context.Background(), []dataprocessing.Source{dataprocessing.BytesSource("may.csv", []byte(csv))}, domain.Filter{})
	require.NoError(t, err)

	require.Len(t, result.Departments, 2)
	assert.Equal(t, "Herbs", result.Departments[0].Department)
	assert.InDelta(t, 5.0, result.Departments[0].ProfitMargin, 1e-9)
	assert.Equal(t, "Roots", result.Departments[1].Department)
	assert.InDelta(t, 20.0, result.Departments[1].ProfitMargin, 1e-9)

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "Current margin: 5.0%", result.Alerts[0].Details)
}

func TestSummaryOf(t *testing.T) {
	result := &domain.AnalysisResult{
		ID:       "p1",
		Summary:  domain.Summary{RecordCount: 3, TotalSales: 10, TotalProfit: 2},
		Alerts:   []domain.Alert{{Type: domain.AlertTypeDanger}},
		Insights: []string{"a", "b"},
	}
	s := SummaryOf(result)
	assert.Equal(t, PassSummary{PassID: "p1", Records: 3, TotalSales: 10, TotalProfit: 2, Alerts: 1, Insights: 2}, s)
}
