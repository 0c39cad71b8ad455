// Package config loads the SalesPulse configuration.
//
// # Configuration Sources
//
// Values are resolved in increasing order of precedence:
//
//	1. Default() values
//	2. A YAML file (SALESPULSE_CONFIG_FILE, or config.yaml / configs/config.yaml)
//	3. Environment variables prefixed with SALESPULSE_
//
// Nested sections map to underscored names:
//
//	SALESPULSE_SERVER_PORT=8080
//	SALESPULSE_LOGGING_LEVEL=debug
//	SALESPULSE_ANALYSIS_LOW_MARGIN_THRESHOLD=12.5
//	SALESPULSE_ANALYSIS_STALE_INVOICE_MONTHS=6
//	SALESPULSE_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,http://localhost:8080
//
// # Paths
//
// Relative directories are resolved against the directory of the running
// executable, never the working directory, so a binary behaves the same
// wherever it is launched from.
package config
