package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"salespulse/internal/config"
	"salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter exports analysis views as CSV.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer resolving relative paths under the
// reports directory.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger.With(slog.String("component", "csv_exporter"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Encode writes one CSV document to w.
func Encode(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteView streams one view of result to w.
func (c *CSVWriter) WriteView(ctx context.Context, w io.Writer, result *domain.AnalysisResult, view View) error {
	table, err := TableOf(result, view)
	if err != nil {
		return err
	}

	c.logger.DebugContext(ctx, "encoding CSV view",
		slog.String("view", string(view)),
		slog.String("pass_id", result.ID),
		slog.Int("row_count", len(table.Rows)))

	return Encode(w, WriteOptions{Headers: table.Headers, Records: table.Rows, BOMPrefix: true})
}

// WriteFile writes one view of result to filePath, creating parent
// directories. Relative paths land in the reports directory.
func (c *CSVWriter) WriteFile(ctx context.Context, filePath string, result *domain.AnalysisResult, view View) (string, error) {
	fullPath := c.resolvePath(filePath)

	c.logger.InfoContext(ctx, "writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.String("view", string(view)),
		slog.Int("record_count", len(result.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", errors.NewStorageError("failed to create directory for CSV output", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", errors.NewStorageError("failed to create CSV file", err)
	}
	defer file.Close()

	if err := c.WriteView(ctx, file, result, view); err != nil {
		return "", errors.NewStorageError("failed to write CSV file", err)
	}

	return fullPath, nil
}

// resolvePath resolves a path to the appropriate directory
func (c *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || c.paths == nil {
		return filePath
	}
	return c.paths.ReportPath(filePath)
}
