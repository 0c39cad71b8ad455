// Package services holds the stateful layer between transports and the pure
// analytics package.
//
// AnalysisService owns the working dataset. Every upload or filter change
// re-runs a whole pass; the finished result is swapped in atomically, so
// readers see either the previous pass or the new one. A failed ingestion
// leaves the previous pass published.
//
//	svc := services.NewAnalysisService(ingestor, analytics.DefaultOptions(), logger,
//		services.WithBroadcaster(hub),
//		services.WithMetrics(metrics))
//
//	result, err := svc.Run(ctx, sources, domain.Filter{Department: "Herbs"})
//
// HealthService reports liveness and readiness for the HTTP health endpoints.
package services
