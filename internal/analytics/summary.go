package analytics

import (
	"sort"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Summarize returns the headline metrics. The margin is a ratio of sums.
func Summarize(records []domain.SalesRecord) domain.Summary {
	var s domain.Summary
	for _, r := range records {
		s.TotalSales += r.TotalRevenue
		s.TotalProfit += r.TotalProfit
	}
	s.RecordCount = len(records)
	s.ProfitMargin = Margin(s.TotalProfit, s.TotalSales)
	return s
}

// SalesByWeekday returns revenue per weekday, Sunday first. All seven days are
// always present.
func SalesByWeekday(records []domain.SalesRecord) []domain.WeekdaySales {
	out := make([]domain.WeekdaySales, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out[d] = domain.WeekdaySales{Weekday: d, Name: d.String()}
	}
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		out[r.Date.Weekday()].TotalSales += r.TotalRevenue
	}
	return out
}

// AvailableMonths lists the distinct YYYY-MM keys of dated records, oldest
// first.
func AvailableMonths(records []domain.SalesRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		key := domain.MonthOf(r.Date).String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Departments lists the distinct departments in first-seen order.
func Departments(records []domain.SalesRecord) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		d := DepartmentOf(r.Product)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
