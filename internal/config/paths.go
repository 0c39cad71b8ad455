package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application directories.
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	LogsDir       string
}

// GetPaths returns the default layout relative to the executable location.
func GetPaths() (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}
	return NewPaths(exeDir), nil
}

// NewPaths returns the default layout rooted at baseDir:
//
//	base/
//	  ├── data/
//	  │   └── reports/   (CSV, XLSX and JSON exports)
//	  └── logs/
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		ReportsDir:    filepath.Join(dataDir, "reports"),
		LogsDir:       filepath.Join(baseDir, "logs"),
	}
}

// GetPaths returns the directories of a loaded configuration.
func (c *Config) GetPaths() *Paths {
	return &Paths{
		ExecutableDir: c.Paths.ExecutableDir,
		DataDir:       c.Paths.DataDir,
		ReportsDir:    c.Paths.ReportsDir,
		LogsDir:       c.Paths.LogsDir,
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// ReportPath returns the path of a named export inside ReportsDir.
func (p *Paths) ReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// executableDir resolves the directory of the running binary.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}
