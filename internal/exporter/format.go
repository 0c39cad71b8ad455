package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	isoDate     = "2006-01-02"
	displayDate = "Jan 2, 2006"
)

// formatAmount rounds a money value half away from zero to 2 places.
func formatAmount(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}

// FormatUSD renders a money value as "$1,234.50" (negative: "-$1,234.50").
func FormatUSD(f float64) string {
	d := decimal.NewFromFloat(f).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatPercent renders a percentage with one decimal place.
func formatPercent(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(1)
}

// formatQuantity drops trailing zeros: 3 stays "3", 2.5 stays "2.5".
func formatQuantity(f float64) string {
	return decimal.NewFromFloat(f).String()
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}

// formatDate renders an ISO date, or "" for a missing one.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(isoDate)
}

// FormatDisplayDate renders "Jan 2, 2006", or "" for a missing date.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDate)
}
