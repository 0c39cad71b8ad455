package dataprocessing

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is the container format of a raw source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Source is one raw tabular export. Open is called once per parse.
type Source struct {
	Name   string
	Format Format
	Open   func() (io.ReadCloser, error)
}

// FileSource reads a file from disk, detecting the format from its extension.
func FileSource(path string) Source {
	return Source{
		Name:   filepath.Base(path),
		Format: DetectFormat(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// BytesSource wraps an in-memory blob, e.g. an uploaded file.
func BytesSource(name string, data []byte) Source {
	return Source{
		Name:   name,
		Format: DetectFormat(name),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// DetectFormat maps a file name to a Format. Unknown extensions are read as
// delimited text.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".tsv", ".tab":
		return FormatTSV
	default:
		return FormatCSV
	}
}
