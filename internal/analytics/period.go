package analytics

import (
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// PeriodRange returns the first and last transaction dates. It fails with an
// EmptyDatasetError when no record carries a date.
func PeriodRange(records []domain.SalesRecord) (domain.Period, error) {
	var first, last time.Time
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		if first.IsZero() || r.Date.Before(first) {
			first = r.Date
		}
		if last.IsZero() || r.Date.After(last) {
			last = r.Date
		}
	}
	if first.IsZero() {
		return domain.Period{}, apperrors.NewEmptyDatasetError("period range")
	}
	return domain.Period{Start: first, End: last}, nil
}

func timeMonth(m int) time.Month { return time.Month(m) }
