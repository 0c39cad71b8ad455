package http

import (
	"context"

	"salespulse/internal/dataprocessing"
	"salespulse/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the pass operations the analysis handler
// needs.
type AnalysisServiceInterface interface {
	Run(ctx context.Context, sources []dataprocessing.Source, filter domain.Filter) (*domain.AnalysisResult, error)
	Append(ctx context.Context, sources []dataprocessing.Source, filter domain.Filter) (*domain.AnalysisResult, error)
	Refilter(ctx context.Context, filter domain.Filter) (*domain.AnalysisResult, error)
	Current() (*domain.AnalysisResult, bool)
}
