package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
)

// dateLayouts are tried in order for textual dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// Excel serial dates outside this range are not treated as dates.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465 // 9999-12-31
)

// ParseNumber coerces a currency, percentage or plain numeric field. It strips
// "$", thousands separators, "%" and surrounding whitespace, and reads
// accounting negatives written as "(12.50)". A blank field reports ok=false;
// NaN and infinities are coercion errors.
func ParseNumber(field, raw string) (value float64, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer("$", "", ",", "", "%", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" || s == "-" {
		return 0, false, nil
	}

	v, convErr := strconv.ParseFloat(s, 64)
	if convErr != nil {
		return 0, false, apperrors.NewCoercionError(field, raw, convErr)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, apperrors.NewCoercionError(field, raw, fmt.Errorf("not a finite number"))
	}
	if negative {
		v = -v
	}
	return v, true, nil
}

// ParseDate coerces a textual or Excel-serial date. A blank field yields the
// zero time with ok=false.
func ParseDate(field, raw string) (t time.Time, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false, nil
	}

	for _, layout := range dateLayouts {
		if parsed, perr := time.Parse(layout, s); perr == nil {
			return parsed, true, nil
		}
	}

	// Workbooks read with raw cell values carry dates as serial numbers.
	if serial, perr := strconv.ParseFloat(s, 64); perr == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		parsed, xerr := excelize.ExcelDateToTime(serial, false)
		if xerr == nil {
			return parsed, true, nil
		}
	}

	return time.Time{}, false, apperrors.NewCoercionError(field, raw, fmt.Errorf("unrecognized date format"))
}
