package domain

import (
	"time"
)

// AlertType is the severity of an alert.
type AlertType string

const (
	AlertTypeWarning AlertType = "warning"
	AlertTypeDanger  AlertType = "danger"
)

// Alert is a rule-based notice produced by one analysis pass.
type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details"`
}

// Period is the inclusive first/last transaction date of a dataset.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Summary holds the headline metrics of a dataset.
type Summary struct {
	RecordCount  int     `json:"record_count"`
	TotalSales   float64 `json:"total_sales"`
	TotalProfit  float64 `json:"total_profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

// WeekdaySales is total revenue for one day of the week.
type WeekdaySales struct {
	Weekday    time.Weekday `json:"weekday"`
	Name       string       `json:"name"`
	TotalSales float64      `json:"total_sales"`
}

// Filter narrows a dataset before a pass. An empty or "All" department and a nil
// month both mean no narrowing.
type Filter struct {
	Department string     `json:"department,omitempty"`
	Month      *YearMonth `json:"month,omitempty"`
}

// AllDepartments is the department filter value that keeps every record.
const AllDepartments = "All"

// AnalysisResult is everything one pass produces. It is built once and never
// mutated after it is returned.
type AnalysisResult struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Filter      Filter    `json:"filter"`

	// Period is nil when the filtered dataset has no dated records.
	Period  *Period `json:"period,omitempty"`
	Summary Summary `json:"summary"`

	Departments []DepartmentSales     `json:"departments"`
	Customers   []CustomerSales       `json:"customers"`
	Products    []ProductSales        `json:"products"`
	SalesReps   []SalesRepPerformance `json:"sales_reps"`
	Alerts      []Alert               `json:"alerts"`
	Insights    []string              `json:"insights"`
	Weekdays    []WeekdaySales        `json:"weekdays"`

	// Selector values, computed on the unfiltered dataset.
	AvailableMonths      []string `json:"available_months"`
	AvailableDepartments []string `json:"available_departments"`

	// Records is the filtered working set the views were computed from.
	Records []SalesRecord `json:"-"`
}
