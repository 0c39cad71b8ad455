package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "salespulse/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths. Relative entries are resolved
// against ExecutableDir.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir    string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// AnalysisConfig holds the thresholds of the alert and insight rules and the
// ingestion settings.
type AnalysisConfig struct {
	// Records whose Total Profit % is below this get a low-margin warning.
	LowMarginThreshold float64 `yaml:"low_margin_threshold" envconfig:"LOW_MARGIN_THRESHOLD"`
	// Unpaid invoices requested more than this many months ago are stale.
	StaleInvoiceMonths int `yaml:"stale_invoice_months" envconfig:"STALE_INVOICE_MONTHS"`
	// Percent floor for the dataset-wide mean margin insight.
	InsightMarginFloor float64 `yaml:"insight_margin_floor" envconfig:"INSIGHT_MARGIN_FLOOR"`
	// Percent below which a record counts as a low-margin line.
	InsightLowMarginRatio float64 `yaml:"insight_low_margin_ratio" envconfig:"INSIGHT_LOW_MARGIN_RATIO"`
	// The low-margin insight fires when more than this many lines qualify.
	InsightLowMarginCount int `yaml:"insight_low_margin_count" envconfig:"INSIGHT_LOW_MARGIN_COUNT"`

	Delimiter            string `yaml:"delimiter" envconfig:"DELIMITER"`
	MaxConcurrentSources int    `yaml:"max_concurrent_sources" envconfig:"MAX_CONCURRENT_SOURCES"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// TelemetryConfig controls tracing and metrics.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, the config file if one is
// found, and SALESPULSE_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file "+configFile, err)
		}
	}

	// Only variables that are present override; defaults come from Default().
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg. Keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths makes every configured directory absolute.
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir == "" {
		dir, err := executableDir()
		if err != nil {
			return err
		}
		c.Paths.ExecutableDir = dir
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.Paths.ExecutableDir, p)
	}

	c.Paths.DataDir = resolve(c.Paths.DataDir)
	c.Paths.ReportsDir = resolve(c.Paths.ReportsDir)
	c.Paths.LogsDir = resolve(c.Paths.LogsDir)
	if c.Logging.FilePath != "" && !filepath.IsAbs(c.Logging.FilePath) {
		c.Logging.FilePath = filepath.Join(c.Paths.ExecutableDir, c.Logging.FilePath)
	}
	return nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	// Logs are always structured JSON.
	c.Logging.Format = "json"

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output %q: want console, file or both", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file path is required for output %q", c.Logging.Output)
	}

	return c.Analysis.Validate()
}

// Validate checks the analysis thresholds.
func (a AnalysisConfig) Validate() error {
	if a.LowMarginThreshold < 0 || a.InsightMarginFloor < 0 || a.InsightLowMarginRatio < 0 {
		return fmt.Errorf("analysis thresholds must not be negative")
	}
	if a.StaleInvoiceMonths <= 0 {
		return fmt.Errorf("stale invoice months must be positive, got %d", a.StaleInvoiceMonths)
	}
	if a.InsightLowMarginCount < 0 {
		return fmt.Errorf("insight low margin count must not be negative")
	}
	if len([]rune(a.Delimiter)) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", a.Delimiter)
	}
	if a.MaxConcurrentSources <= 0 {
		return fmt.Errorf("max concurrent sources must be positive")
	}
	return nil
}

// DelimiterRune returns the configured delimiter as a rune.
func (a AnalysisConfig) DelimiterRune() rune {
	if r := []rune(a.Delimiter); len(r) == 1 {
		return r[0]
	}
	return ','
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "console",
			FilePath:    "logs/app.log",
			Development: false,
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Analysis: AnalysisConfig{
			LowMarginThreshold:    DefaultLowMarginThreshold,
			StaleInvoiceMonths:    DefaultStaleInvoiceMonths,
			InsightMarginFloor:    DefaultInsightMarginFloor,
			InsightLowMarginRatio: DefaultInsightLowMarginRatio,
			InsightLowMarginCount: DefaultInsightLowMarginCount,
			Delimiter:             DefaultDelimiter,
			MaxConcurrentSources:  DefaultMaxConcurrentSources,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "salespulse",
			TracingEnabled: true,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
