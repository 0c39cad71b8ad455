// Package http implements the HTTP handlers of the sales analysis service.
//
// Handlers are thin: they parse and validate the request, call the analysis
// service and render the result with go-chi/render. Failures are rendered as
// RFC 7807 problem details by the shared error handler.
//
// Routes:
//
//	POST /api/analysis              multipart files[] (+ append=true), runs a pass
//	GET  /api/analysis              current pass, or a re-filtered one with ?department=&month=
//	GET  /api/analysis/export.csv   one view of the current pass as CSV (?view=)
//	GET  /api/analysis/export.xlsx  the current pass as a workbook
//	GET  /api/health[/ready|/live]  health checks
package http
