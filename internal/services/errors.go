package services

import apperrors "salespulse/internal/errors"

// Analysis service errors
var (
	// ErrNoDataset is returned when a view is requested before any upload.
	ErrNoDataset = apperrors.NewNotFoundError("dataset")

	// ErrNoSources is returned when a pass is started without any source.
	ErrNoSources = apperrors.NewAppValidationError("no sources provided")
)
