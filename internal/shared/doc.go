// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and builders for sales export fixtures (CSV text and XLSX
// workbooks) used by the ingestion, service and HTTP tests.
package shared
