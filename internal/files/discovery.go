package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"salespulse/internal/dataprocessing"
)

// sourceExtensions are the file types the ingestion layer can read.
var sourceExtensions = map[string]bool{
	".csv":  true,
	".tsv":  true,
	".tab":  true,
	".xlsx": true,
	".xlsm": true,
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds sales exports on disk.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative directories
// passed to its methods are resolved against it.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindSalesFiles lists the readable sales exports directly inside dir, by
// name. Office lock files (~$name.xlsx), hidden files, empty files and
// subdirectories are skipped.
func (d *Discovery) FindSalesFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsSalesFile(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindSources is FindSalesFiles turned into ingestion sources.
func (d *Discovery) FindSources(dir string) ([]dataprocessing.Source, error) {
	files, err := d.FindSalesFiles(dir)
	if err != nil {
		return nil, err
	}
	sources := make([]dataprocessing.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, dataprocessing.FileSource(f.Path))
	}
	return sources, nil
}

// IsSalesFile reports whether name looks like a readable sales export.
func IsSalesFile(name string) bool {
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	return sourceExtensions[strings.ToLower(filepath.Ext(name))]
}
