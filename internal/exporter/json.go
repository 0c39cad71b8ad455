package exporter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// EncodeJSON writes result as indented JSON.
func EncodeJSON(w io.Writer, result *domain.AnalysisResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// WriteJSONFile writes result to path, creating parent directories.
func WriteJSONFile(ctx context.Context, logger *slog.Logger, path string, result *domain.AnalysisResult) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "writing analysis result to JSON",
		slog.String("path", path),
		slog.String("pass_id", result.ID))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for JSON output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON file", err)
	}
	defer file.Close()

	if err := EncodeJSON(file, result); err != nil {
		return errors.NewStorageError("failed to encode analysis result to JSON", err)
	}
	return nil
}
