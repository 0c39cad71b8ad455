package config

import "time"

// Application constants
const (
	AppName    = "SalesPulse"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. SALESPULSE_SERVER_PORT.
	EnvPrefix = "SALESPULSE"

	// ConfigFileEnv overrides the config file search.
	ConfigFileEnv = "SALESPULSE_CONFIG_FILE"
)

// Analysis defaults
const (
	DefaultLowMarginThreshold    = 10.0
	DefaultStaleInvoiceMonths    = 6
	DefaultInsightMarginFloor    = 15.0
	DefaultInsightLowMarginRatio = 10.0
	DefaultInsightLowMarginCount = 5
	DefaultDelimiter             = ","
	DefaultMaxConcurrentSources  = 4
)

// Limits
const (
	DefaultMaxUploadBytes = 32 << 20
	DefaultHTTPTimeout    = 30 * time.Second
)

// Well-known export file names
const (
	RecordsExportFile  = "sales_records.csv"
	WorkbookExportFile = "sales_analysis.xlsx"
	ResultJSONFile     = "sales_analysis.json"
)
