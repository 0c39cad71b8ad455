// Package exporter renders a finished analysis pass for people and
// spreadsheets.
//
// CSVWriter writes one view (records, departments, customers, products, reps,
// alerts) per file with a UTF-8 BOM so Excel opens it cleanly. WorkbookWriter
// writes every view into one XLSX workbook behind a Summary sheet. Money is
// rounded with shopspring/decimal, never with float formatting.
//
//	csvw := exporter.NewCSVWriter(paths, logger)
//	_, err := csvw.WriteFile(ctx, "departments.csv", result, exporter.ViewDepartments)
//
//	book := exporter.NewWorkbookWriter(paths, logger)
//	_, err = book.WriteFile(ctx, config.WorkbookExportFile, result)
package exporter
