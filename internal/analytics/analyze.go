package analytics

import (
	"time"

	"github.com/google/uuid"

	"salespulse/internal/config"
	"salespulse/pkg/contracts/domain"
)

// Options configures one pass.
type Options struct {
	Filter       domain.Filter
	AlertRules   AlertRules
	InsightRules InsightRules

	// Now is the evaluation clock for the stale-invoice rule. Nil means
	// time.Now.
	Now func() time.Time
}

// DefaultOptions returns the default rules with no filter.
func DefaultOptions() Options {
	return Options{
		AlertRules:   DefaultAlertRules(),
		InsightRules: DefaultInsightRules(),
	}
}

// OptionsFrom maps the analysis section of the configuration onto pass
// options.
func OptionsFrom(cfg config.AnalysisConfig) Options {
	return Options{
		AlertRules: AlertRules{
			LowMarginThreshold: cfg.LowMarginThreshold,
			StaleInvoiceMonths: cfg.StaleInvoiceMonths,
		},
		InsightRules: InsightRules{
			MarginFloor:    cfg.InsightMarginFloor,
			LowMarginRatio: cfg.InsightLowMarginRatio,
			LowMarginCount: cfg.InsightLowMarginCount,
		},
	}
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// Analyze runs one pass over records: filter, then compute every view from the
// same filtered set. The selector lists come from the unfiltered input. The
// input slice is not modified and the result shares no slices with it.
func Analyze(records []domain.SalesRecord, opts Options) *domain.AnalysisResult {
	now := opts.now()
	filtered := ApplyFilter(records, opts.Filter)

	result := &domain.AnalysisResult{
		ID:                   uuid.New().String(),
		GeneratedAt:          now.UTC(),
		Filter:               opts.Filter,
		Summary:              Summarize(filtered),
		Departments:          ByDepartment(filtered),
		Customers:            ByCustomer(filtered),
		Products:             ByProduct(filtered),
		SalesReps:            ByRepresentative(filtered),
		Alerts:               opts.AlertRules.Evaluate(filtered, now),
		Insights:             opts.InsightRules.Evaluate(filtered),
		Weekdays:             SalesByWeekday(filtered),
		AvailableMonths:      AvailableMonths(records),
		AvailableDepartments: Departments(records),
		Records:              filtered,
	}

	if period, err := PeriodRange(filtered); err == nil {
		result.Period = &period
	}

	return result
}
