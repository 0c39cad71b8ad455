package analytics

import (
	"time"

	"salespulse/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pct(v float64) *float64 { return &v }

func sale(product string, revenue, profit float64) domain.SalesRecord {
	return domain.SalesRecord{Product: product, TotalRevenue: revenue, TotalProfit: profit}
}

func dated(r domain.SalesRecord, t time.Time) domain.SalesRecord {
	r.Date = t
	return r
}
