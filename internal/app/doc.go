// Package app wires the sales analysis server together: configuration,
// logging, OpenTelemetry, the ingestion pipeline, the analysis service, the
// websocket hub and the chi router. It also owns the HTTP server lifecycle.
//
// Initialization order:
//
//	1. Load configuration and initialize the logger (NewApplication)
//	2. Ensure the data and reports directories exist
//	3. Initialize OpenTelemetry and the application instruments
//	4. Build the hub, the ingestor and the analysis and health services
//	5. Mount middleware and routes
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// the configured shutdown timeout. Errors are returned to the caller; the
// package never calls os.Exit.
package app
