// Package dataprocessing ingests sales exports.
//
// A Source is one raw export: delimited text (CSV or TSV) or an .xlsx
// workbook. The Parser maps columns by header name, so column order does not
// matter and unknown columns are ignored. Product, Total Revenue and
// Total Profit $ are required.
//
// Coercion happens here and nowhere else. Currency and percentage cells such
// as "$1,200.50" or "8.5%" become float64 values whether they arrive as text or
// as native workbook numbers, and dates accept the common textual layouts as
// well as Excel serial numbers.
//
// A malformed source (unreadable header, row arity mismatch, a cell that
// cannot be coerced) fails with a ParseError that names the source and row.
// Nothing from a failed source is kept.
//
// The Ingestor reads sources concurrently and merges them:
//
//	ingestor := dataprocessing.NewIngestor(logger, dataprocessing.NewParser(logger, opts), 4)
//	records, err := ingestor.Ingest(ctx, []dataprocessing.Source{
//	    dataprocessing.FileSource("may.csv"),
//	    dataprocessing.FileSource("june.xlsx"),
//	})
package dataprocessing
