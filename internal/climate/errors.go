package climate

import "errors"

var (
	// ErrInsufficientData is returned when a statistic has too few points.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrMissingProfile is returned when no profile exists for a season.
	ErrMissingProfile = errors.New("missing season profile")

	ErrInvalidWindow        = errors.New("window size must be positive")
	ErrInvalidThreshold     = errors.New("sigma threshold must be a finite non-negative number")
	ErrMixedCities          = errors.New("observations belong to more than one city")
	ErrUnsortedObservations = errors.New("observations are not sorted by date")
)
