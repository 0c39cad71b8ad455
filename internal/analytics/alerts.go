package analytics

import (
	"fmt"
	"time"

	"salespulse/pkg/contracts/domain"
)

// AlertRules holds the thresholds of the alert rules.
type AlertRules struct {
	// LowMarginThreshold is the Total Profit % below which a record is flagged.
	LowMarginThreshold float64
	// StaleInvoiceMonths is how old an unpaid request date must be to count.
	StaleInvoiceMonths int
}

// DefaultAlertRules flags margins under 10% and invoices unpaid for six months.
func DefaultAlertRules() AlertRules {
	return AlertRules{LowMarginThreshold: 10, StaleInvoiceMonths: 6}
}

// GenerateAlerts evaluates the default rules at now.
func GenerateAlerts(records []domain.SalesRecord, now time.Time) []domain.Alert {
	return DefaultAlertRules().Evaluate(records, now)
}

// Evaluate runs both rules. The low-margin rule yields one warning per
// offending record, in record order; the stale-invoice rule yields at most one
// danger alert, after the warnings. Records missing the field a rule needs are
// skipped by that rule.
func (r AlertRules) Evaluate(records []domain.SalesRecord, now time.Time) []domain.Alert {
	alerts := make([]domain.Alert, 0)

	for _, rec := range records {
		if rec.ProfitPercent == nil || *rec.ProfitPercent >= r.LowMarginThreshold {
			continue
		}
		alerts = append(alerts, domain.Alert{
			Type:    domain.AlertTypeWarning,
			Message: fmt.Sprintf("Low profit margin for %s", rec.Product),
			Details: fmt.Sprintf("Current margin: %.1f%%", *rec.ProfitPercent),
		})
	}

	cutoff := subMonths(now, r.StaleInvoiceMonths)
	stale := 0
	for _, rec := range records {
		if rec.PaymentStatus.IsUnpaid() && !rec.RequestDate.IsZero() && rec.RequestDate.Before(cutoff) {
			stale++
		}
	}
	if stale > 0 {
		alerts = append(alerts, domain.Alert{
			Type:    domain.AlertTypeDanger,
			Message: "Outstanding unpaid invoices",
			Details: fmt.Sprintf("%d invoices pending payment", stale),
		})
	}

	return alerts
}

// subMonths steps back n calendar months, clamping to the last day of the
// target month (Aug 31 minus six months is Feb 28, not Mar 3).
func subMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, -n, 0)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
