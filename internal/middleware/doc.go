// Package middleware holds the HTTP middleware chain of the web server:
// request IDs, structured request logging, panic recovery, rate limiting,
// body size limits, CORS, security headers and OpenTelemetry spans and
// metrics. It also validates the analysis query string.
package middleware
