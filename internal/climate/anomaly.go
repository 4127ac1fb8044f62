package climate

import (
	"fmt"
	"math"
)

// DetectAnomalies flags every observation whose z-score against its season
// profile exceeds sigmaThreshold in absolute value. The result is freshly
// allocated and follows input order.
func DetectAnomalies(observations []Observation, profiles Profiles, sigmaThreshold float64) ([]AnomalyFlag, error) {
	if err := checkThreshold(sigmaThreshold); err != nil {
		return nil, err
	}

	flags := make([]AnomalyFlag, 0, len(observations))
	for _, o := range observations {
		season := SeasonAt(o.Date)
		p, ok := profiles[season]
		if !ok {
			return nil, fmt.Errorf("%w: %s (observation %s)", ErrMissingProfile, season, o.Date.Format("2006-01-02"))
		}
		flags = append(flags, flagObservation(o, p, sigmaThreshold))
	}
	return flags, nil
}

// CountAnomalies returns the number of anomalous flags.
func CountAnomalies(flags []AnomalyFlag) int {
	n := 0
	for _, f := range flags {
		if f.IsAnomalous {
			n++
		}
	}
	return n
}

func flagObservation(o Observation, p SeriesProfile, sigmaThreshold float64) AnomalyFlag {
	z := deviation(o.Temperature, p)
	return AnomalyFlag{
		Observation:    o,
		IsAnomalous:    math.Abs(z) > sigmaThreshold,
		DeviationSigma: z,
	}
}

// deviation returns the z-score of temperature against p. A zero-spread
// profile yields 0 for its mean and ±Inf for anything else.
func deviation(temperature float64, p SeriesProfile) float64 {
	diff := temperature - p.Mean
	if p.StdDev == 0 {
		switch {
		case diff > 0:
			return math.Inf(1)
		case diff < 0:
			return math.Inf(-1)
		default:
			return 0
		}
	}
	return diff / p.StdDev
}

func checkThreshold(sigma float64) error {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, sigma)
	}
	return nil
}
