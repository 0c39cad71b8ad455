package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salespulse/internal/config"
	"salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// SummarySheet is the first sheet of an exported workbook.
const SummarySheet = "Summary"

var sheetNames = map[View]string{
	ViewRecords:     "Records",
	ViewDepartments: "Departments",
	ViewCustomers:   "Customers",
	ViewProducts:    "Products",
	ViewSalesReps:   "Sales Reps",
	ViewAlerts:      "Alerts",
}

// SheetName returns the worksheet name of a view.
func SheetName(v View) string { return sheetNames[v] }

// WorkbookWriter exports a whole analysis result as one XLSX workbook with a
// summary sheet followed by one sheet per view.
type WorkbookWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(paths *config.Paths, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{paths: paths, logger: logger.With(slog.String("component", "xlsx_exporter"))}
}

// Build assembles the workbook in memory. The caller closes it.
func (w *WorkbookWriter) Build(result *domain.AnalysisResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeRows(f, SummarySheet, summaryRows(result)); err != nil {
		f.Close()
		return nil, err
	}

	for _, v := range Views {
		table, err := TableOf(result, v)
		if err != nil {
			f.Close()
			return nil, err
		}
		name := SheetName(v)
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
		rows := append([][]string{table.Headers}, table.Rows...)
		if err := writeRows(f, name, rows); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write encodes the workbook to out.
func (w *WorkbookWriter) Write(ctx context.Context, out io.Writer, result *domain.AnalysisResult) error {
	f, err := w.Build(result)
	if err != nil {
		return errors.NewStorageError("failed to build workbook", err)
	}
	defer f.Close()

	w.logger.DebugContext(ctx, "encoding workbook",
		slog.String("pass_id", result.ID),
		slog.Int("sheet_count", f.SheetCount))

	if _, err := f.WriteTo(out); err != nil {
		return errors.NewStorageError("failed to write workbook", err)
	}
	return nil
}

// WriteFile saves the workbook to filePath. Relative paths land in the
// reports directory.
func (w *WorkbookWriter) WriteFile(ctx context.Context, filePath string, result *domain.AnalysisResult) (string, error) {
	fullPath := filePath
	if !filepath.IsAbs(filePath) && w.paths != nil {
		fullPath = w.paths.ReportPath(filePath)
	}

	w.logger.InfoContext(ctx, "writing workbook",
		slog.String("full_path", fullPath),
		slog.String("pass_id", result.ID))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", errors.NewStorageError("failed to create directory for workbook", err)
	}

	f, err := w.Build(result)
	if err != nil {
		return "", errors.NewStorageError("failed to build workbook", err)
	}
	defer f.Close()

	if err := f.SaveAs(fullPath); err != nil {
		return "", errors.NewStorageError("failed to save workbook", err)
	}
	return fullPath, nil
}

func summaryRows(result *domain.AnalysisResult) [][]string {
	department := result.Filter.Department
	if department == "" {
		department = domain.AllDepartments
	}
	month := "All"
	if result.Filter.Month != nil {
		month = result.Filter.Month.String()
	}
	period := ""
	if result.Period != nil {
		period = FormatDisplayDate(result.Period.Start) + " - " + FormatDisplayDate(result.Period.End)
	}

	rows := [][]string{
		{"Pass", result.ID},
		{"Generated", result.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Department", department},
		{"Month", month},
		{"Period", period},
		{"Records", formatInt(result.Summary.RecordCount)},
		{"Total Sales", FormatUSD(result.Summary.TotalSales)},
		{"Total Profit", FormatUSD(result.Summary.TotalProfit)},
		{"Profit Margin %", formatPercent(result.Summary.ProfitMargin)},
	}
	if len(result.Insights) > 0 {
		rows = append(rows, []string{})
		rows = append(rows, []string{"Insights"})
		for _, s := range result.Insights {
			rows = append(rows, []string{"", s})
		}
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
