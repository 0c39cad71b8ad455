package domain

import (
	"strings"
	"time"
)

// PaymentStatus is the invoice payment state reported by the sales export.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusPartial PaymentStatus = "Partial"
)

// IsUnpaid reports whether the status is exactly "Unpaid" (case-insensitive).
func (s PaymentStatus) IsUnpaid() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(PaymentStatusUnpaid))
}

// SalesRecord is one transaction line of a sales-by-item export.
//
// Numeric fields are already coerced at the ingestion boundary. TotalRevenue and
// TotalProfit are trusted as reported; nothing downstream recomputes them from
// unit price and quantity.
type SalesRecord struct {
	Product       string        `json:"product"`
	Customer      string        `json:"customer"`
	SalesRep      string        `json:"sales_rep"`
	Date          time.Time     `json:"date"`
	Quantity      float64       `json:"quantity" validate:"min=0"`
	Unit          string        `json:"unit,omitempty"`
	CostPerUnit   float64       `json:"cost_per_unit"`
	PricePerUnit  float64       `json:"price_per_unit"`
	TotalRevenue  float64       `json:"total_revenue"`
	TotalProfit   float64       `json:"total_profit"`
	ProfitPercent *float64      `json:"profit_percent,omitempty"`
	SalesOrder    string        `json:"sales_order,omitempty"`
	InvoiceNumber string        `json:"invoice_number,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	RequestDate   time.Time     `json:"request_date,omitempty"`

	// Provenance, used in error messages and exports.
	Source string `json:"source,omitempty"`
	Row    int    `json:"row,omitempty"`
}

// HasDate reports whether the transaction date was present in the source.
func (r SalesRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// ProfitRatio returns TotalProfit / TotalRevenue, or 0 when revenue is 0.
func (r SalesRecord) ProfitRatio() float64 {
	if r.TotalRevenue == 0 {
		return 0
	}
	return r.TotalProfit / r.TotalRevenue
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int        `json:"year" validate:"min=1"`
	Month time.Month `json:"month" validate:"min=1,max=12"`
}

// MonthOf returns the calendar month a timestamp falls in.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// String formats the month as YYYY-MM, which also sorts chronologically.
func (ym YearMonth) String() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Contains reports whether t falls within the month.
func (ym YearMonth) Contains(t time.Time) bool {
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// ParseYearMonth parses a YYYY-MM key.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, err
	}
	return MonthOf(t), nil
}
