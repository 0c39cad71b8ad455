package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SalesHeader is the column layout of a sales-by-item export.
var SalesHeader = []string{
	"Date", "Product", "Customer", "Sales Rep", "Quantity", "Unit",
	"Cost Per Unit", "Price Per Unit", "Total Revenue", "Total Profit $", "Total Profit %",
	"Sales Order", "Invoice Number", "Invoice Payment Status", "Reqs. Date",
}

// SalesRow builds one export row in SalesHeader order.
type SalesRow struct {
	Date, Product, Customer, SalesRep string
	Quantity, Revenue, Profit, Percent string
	Status, RequestDate              string
}

// Fields returns the row in SalesHeader order.
func (r SalesRow) Fields() []string {
	return []string{
		r.Date, r.Product, r.Customer, r.SalesRep, r.Quantity, "ea",
		"", "", r.Revenue, r.Profit, r.Percent,
		"", "", r.Status, r.RequestDate,
	}
}

// SalesCSV renders rows as CSV text with the standard header.
func SalesCSV(t *testing.T, rows ...SalesRow) string {
	t.Helper()

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(SalesHeader); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}
	return sb.String()
}

// WriteSalesCSV writes rows to dir/name and returns the path.
func WriteSalesCSV(t *testing.T, dir, name string, rows ...SalesRow) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(SalesCSV(t, rows...)), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteSalesXLSX writes a workbook whose first sheet holds header and cells.
// Cells keep their Go types so numeric cells stay numeric in the file.
func WriteSalesXLSX(t *testing.T, dir, name string, header []string, cells [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		t.Fatalf("set header: %v", err)
	}
	for i, row := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("set row %d: %v", i+2, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return path
}
