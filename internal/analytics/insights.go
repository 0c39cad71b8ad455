package analytics

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"salespulse/pkg/contracts/domain"
)

// InsightRules holds the thresholds of the insight checks, in percent.
type InsightRules struct {
	MarginFloor    float64
	LowMarginRatio float64
	LowMarginCount int
}

// DefaultInsightRules: mean margin under 15%, more than five lines under 10%.
func DefaultInsightRules() InsightRules {
	return InsightRules{MarginFloor: 15, LowMarginRatio: 10, LowMarginCount: 5}
}

// GenerateInsights evaluates the default insight rules.
func GenerateInsights(records []domain.SalesRecord) []string {
	return DefaultInsightRules().Evaluate(records)
}

// MonthlyRevenue is total revenue of one calendar month.
type MonthlyRevenue struct {
	Month   domain.YearMonth `json:"month"`
	Revenue float64          `json:"revenue"`
}

// RevenueByMonth sums revenue per calendar month, oldest first. Undated
// records are left out.
func RevenueByMonth(records []domain.SalesRecord) []MonthlyRevenue {
	totals := make(map[domain.YearMonth]float64)
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		totals[domain.MonthOf(r.Date)] += r.TotalRevenue
	}

	out := make([]MonthlyRevenue, 0, len(totals))
	for ym, v := range totals {
		out = append(out, MonthlyRevenue{Month: ym, Revenue: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.String() < out[j].Month.String()
	})
	return out
}

// PercentChange is (current - previous) / previous * 100, or 0 when previous
// is 0.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// Evaluate runs the three checks in order, each adding at most one statement.
func (r InsightRules) Evaluate(records []domain.SalesRecord) []string {
	insights := make([]string, 0, 3)

	if s, ok := monthOverMonth(records); ok {
		insights = append(insights, s)
	}

	if len(records) == 0 {
		return insights
	}

	// Mean of per-line ratios, not ratio of sums: one tiny low-margin line
	// weighs as much as a large one.
	var sum float64
	low := 0
	for _, rec := range records {
		ratio := rec.ProfitRatio()
		sum += ratio
		if ratio < r.LowMarginRatio/100 {
			low++
		}
	}
	mean := sum / float64(len(records))

	if mean < r.MarginFloor/100 {
		insights = append(insights,
			fmt.Sprintf("Average profit margin is low: %.1f%%. Consider reviewing product pricing.", mean*100))
	}

	if low > r.LowMarginCount {
		insights = append(insights,
			fmt.Sprintf("More than %d products are under %s%% profit margin.", r.LowMarginCount, trimFloat(r.LowMarginRatio)))
	}

	return insights
}

// monthOverMonth compares the two latest months of revenue.
func monthOverMonth(records []domain.SalesRecord) (string, bool) {
	months := RevenueByMonth(records)
	if len(months) < 2 {
		return "", false
	}

	prev := months[len(months)-2].Revenue
	cur := months[len(months)-1].Revenue
	pct := PercentChange(prev, cur)

	// Flat revenue reads as a 0.0% decrease.
	direction := "decreased"
	if cur > prev {
		direction = "increased"
	}
	return fmt.Sprintf("Sales %s %.1f%% compared to last month.", direction, math.Abs(pct)), true
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
