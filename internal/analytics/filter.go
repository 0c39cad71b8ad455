package analytics

import (
	"strings"

	"salespulse/pkg/contracts/domain"
)

// FilterByDepartment keeps records of one department. An empty name or "All"
// keeps everything. The result is always a new slice.
func FilterByDepartment(records []domain.SalesRecord, department string) []domain.SalesRecord {
	department = strings.TrimSpace(department)
	if department == "" || strings.EqualFold(department, domain.AllDepartments) {
		return append(make([]domain.SalesRecord, 0, len(records)), records...)
	}

	out := make([]domain.SalesRecord, 0)
	for _, r := range records {
		if strings.EqualFold(DepartmentOf(r.Product), department) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMonth keeps records dated within year/month. Undated records never
// match.
func FilterByMonth(records []domain.SalesRecord, year int, month int) []domain.SalesRecord {
	ym := domain.YearMonth{Year: year, Month: timeMonth(month)}
	out := make([]domain.SalesRecord, 0)
	for _, r := range records {
		if r.HasDate() && ym.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// ApplyFilter narrows by department, then by month when one is set.
func ApplyFilter(records []domain.SalesRecord, f domain.Filter) []domain.SalesRecord {
	out := FilterByDepartment(records, f.Department)
	if f.Month != nil {
		out = FilterByMonth(out, f.Month.Year, int(f.Month.Month))
	}
	return out
}
