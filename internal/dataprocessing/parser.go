package dataprocessing

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// ParserOptions configures delimited-text parsing.
type ParserOptions struct {
	// Delimiter separates fields in CSV sources. TSV sources always use tab.
	Delimiter rune
}

// Parser turns raw sources into sales records using header-driven mapping.
type Parser struct {
	logger    *slog.Logger
	opts      ParserOptions
	validator *validator.Validate
}

// NewParser creates a parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger, opts ParserOptions) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Parser{
		logger:    logger.With(slog.String("component", "parser")),
		opts:      opts,
		validator: validator.New(),
	}
}

// tableRow is one data row and its 1-based position in the source.
type tableRow struct {
	line   int
	fields []string
}

// Parse reads every row of src. Any malformed row fails the whole source with
// a ParseError naming it; an empty source yields no records and no error.
func (p *Parser) Parse(ctx context.Context, src Source) ([]domain.SalesRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := src.Open()
	if err != nil {
		return nil, apperrors.NewParseError(src.Name, 0, fmt.Errorf("open: %w", err))
	}
	defer rc.Close()

	var (
		header []string
		rows   []tableRow
	)
	switch src.Format {
	case FormatXLSX:
		header, rows, err = readWorkbook(rc)
	case FormatTSV:
		header, rows, err = readDelimited(rc, '\t')
	default:
		header, rows, err = readDelimited(rc, p.opts.Delimiter)
	}
	if err != nil {
		return nil, apperrors.NewParseError(src.Name, rowOf(err), err)
	}
	if header == nil {
		p.logger.WarnContext(ctx, "source is empty", slog.String("source", src.Name))
		return []domain.SalesRecord{}, nil
	}

	cols, err := mapHeader(header)
	if err != nil {
		return nil, apperrors.NewParseError(src.Name, 1, err)
	}

	records := make([]domain.SalesRecord, 0, len(rows))
	for _, row := range rows {
		if len(row.fields) > cols.width {
			return nil, apperrors.NewParseError(src.Name, row.line,
				fmt.Errorf("row has %d fields, header has %d", len(row.fields), cols.width))
		}
		if isBlank(row.fields) {
			continue
		}

		rec, err := p.buildRecord(cols, row.fields)
		if err != nil {
			return nil, apperrors.NewParseError(src.Name, row.line, err)
		}
		rec.Source = src.Name
		rec.Row = row.line
		records = append(records, rec)
	}

	p.logger.InfoContext(ctx, "source parsed",
		slog.String("source", src.Name),
		slog.String("format", string(src.Format)),
		slog.Int("records", len(records)))

	return records, nil
}

// buildRecord coerces one row. Blank numeric cells read as 0; a blank
// Total Profit % stays nil so rules depending on it skip the record.
func (p *Parser) buildRecord(cols *columnMap, row []string) (domain.SalesRecord, error) {
	rec := domain.SalesRecord{
		Product:       cols.get(row, colProduct),
		Customer:      cols.get(row, colCustomer),
		SalesRep:      cols.get(row, colSalesRep),
		Unit:          cols.get(row, colUnit),
		SalesOrder:    cols.get(row, colSalesOrder),
		InvoiceNumber: cols.get(row, colInvoiceNumber),
		PaymentStatus: domain.PaymentStatus(cols.get(row, colPaymentStatus)),
	}

	numbers := []struct {
		col  column
		name string
		dst  *float64
	}{
		{colQuantity, "Quantity", &rec.Quantity},
		{colCostPerUnit, "Cost Per Unit", &rec.CostPerUnit},
		{colPricePerUnit, "Price Per Unit", &rec.PricePerUnit},
		{colTotalRevenue, "Total Revenue", &rec.TotalRevenue},
		{colTotalProfit, "Total Profit $", &rec.TotalProfit},
	}
	for _, n := range numbers {
		v, _, err := ParseNumber(n.name, cols.get(row, n.col))
		if err != nil {
			return rec, err
		}
		*n.dst = v
	}

	pct, ok, err := ParseNumber("Total Profit %", cols.get(row, colProfitPercent))
	if err != nil {
		return rec, err
	}
	if ok {
		rec.ProfitPercent = &pct
	}

	if rec.Date, _, err = ParseDate("Date", cols.get(row, colDate)); err != nil {
		return rec, err
	}
	if rec.RequestDate, _, err = ParseDate("Reqs. Date", cols.get(row, colRequestDate)); err != nil {
		return rec, err
	}

	if err := p.validator.Struct(rec); err != nil {
		return rec, fmt.Errorf("invalid record: %w", err)
	}
	return rec, nil
}

// readDelimited reads a header row and data rows. Blank lines are skipped by
// the csv reader; a row whose arity differs from the header is an error.
func readDelimited(r io.Reader, delimiter rune) ([]string, []tableRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var rows []tableRow
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, tableRow{line: line, fields: fields})
	}
	return header, rows, nil
}

// readWorkbook reads the first sheet of an .xlsx workbook. Leading empty rows
// are skipped; the first non-empty row is the header. Cells are read raw so
// numbers and dates reach coercion unformatted, except percent-formatted cells,
// which are scaled to the points their text form would carry.
func readWorkbook(r io.Reader) ([]string, []tableRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}

	sheet := sheets[0]
	all, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	percent := newPercentStyles(f)

	var (
		header []string
		rows   []tableRow
	)
	for i, cells := range all {
		if header == nil {
			if isBlank(cells) {
				continue
			}
			header = cells
			continue
		}
		for j, v := range cells {
			if v != "" && percent.cell(sheet, j+1, i+1) {
				cells[j] = scalePercent(v)
			}
		}
		rows = append(rows, tableRow{line: i + 1, fields: cells})
	}
	return header, rows, nil
}

// Built-in number formats 9 ("0%") and 10 ("0.00%").
const (
	numFmtPercent        = 9
	numFmtPercentDecimal = 10
)

// percentStyles remembers which cell styles display a percentage. Such cells
// store a fraction (0.085 shows as 8.5%), while the same margin typed as text
// reads "8.5%".
type percentStyles struct {
	f     *excelize.File
	known map[int]bool
}

func newPercentStyles(f *excelize.File) *percentStyles {
	return &percentStyles{f: f, known: make(map[int]bool)}
}

// cell reports whether the cell at 1-based col and row has a percent format.
func (p *percentStyles) cell(sheet string, col, row int) bool {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	idx, err := p.f.GetCellStyle(sheet, ref)
	if err != nil || idx == 0 {
		return false
	}
	if isPercent, ok := p.known[idx]; ok {
		return isPercent
	}

	isPercent := false
	if style, err := p.f.GetStyle(idx); err == nil && style != nil {
		switch {
		case style.NumFmt == numFmtPercent, style.NumFmt == numFmtPercentDecimal:
			isPercent = true
		case style.CustomNumFmt != nil:
			isPercent = strings.Contains(*style.CustomNumFmt, "%")
		}
	}
	p.known[idx] = isPercent
	return isPercent
}

// scalePercent turns a stored fraction into percentage points. Values that are
// not plain numbers are left for coercion to judge.
func scalePercent(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return d.Shift(2).String()
}

// rowOf extracts the line of a csv error, or 0.
func rowOf(err error) int {
	var csvErr *csv.ParseError
	if stderrors.As(err, &csvErr) {
		return csvErr.Line
	}
	return 0
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
