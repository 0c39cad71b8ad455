package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ClientCounter reports connected websocket clients.
type ClientCounter interface {
	GetClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version    string
	reportsDir string
	analysis   *AnalysisService
	clients    ClientCounter
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service. analysis and clients may be
// nil.
func NewHealthService(version, reportsDir string, analysis *AnalysisService, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:    version,
		reportsDir: reportsDir,
		analysis:   analysis,
		clients:    clients,
		startTime:  time.Now(),
		logger:     logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))

	return status
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["analysis"] = hs.checkAnalysisHealth()
	status.Services["websocket"] = hs.checkWebSocketHealth()
	status.Services["reports"] = hs.checkReportsHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status == "not_ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

// checkAnalysisHealth is ready even without a dataset; it only reports
// whether one is loaded.
func (hs *HealthService) checkAnalysisHealth() ServiceHealth {
	if hs.analysis == nil {
		return ServiceHealth{Status: "not_ready", Message: "analysis service not initialized"}
	}
	result, ok := hs.analysis.Current()
	if !ok {
		return ServiceHealth{Status: "ready", Message: "no dataset loaded"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("pass %s with %d records", result.ID, result.Summary.RecordCount),
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: "disabled"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clients.GetClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkReportsHealth() ServiceHealth {
	if hs.reportsDir == "" {
		return ServiceHealth{Status: "disabled"}
	}
	if _, err := os.Stat(hs.reportsDir); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("reports directory unavailable: %s", hs.reportsDir),
		}
	}
	return ServiceHealth{Status: "ready"}
}
