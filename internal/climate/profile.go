package climate

import (
	"fmt"
	"math"
)

// ComputeProfile computes per-season rolling statistics for a single city.
//
// Observations must be sorted by date and share one city. Each season bucket
// keeps date order; a trailing window of windowSize observations slides over
// it and the profile is the average of the window means, with StdDev the
// square root of the average window (population) variance. Seasons without
// observations get no profile.
func ComputeProfile(observations []Observation, windowSize int) (Profiles, error) {
	if windowSize < 1 {
		return nil, ErrInvalidWindow
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: no observations", ErrInsufficientData)
	}
	if err := checkSeries(observations); err != nil {
		return nil, err
	}

	buckets := make(map[Season][]float64, 4)
	for _, o := range observations {
		s := SeasonAt(o.Date)
		buckets[s] = append(buckets[s], o.Temperature)
	}

	profiles := make(Profiles, len(buckets))
	for _, season := range Seasons() {
		values, ok := buckets[season]
		if !ok {
			continue
		}
		if len(values) < windowSize {
			return nil, fmt.Errorf("%w: %s has %d observations, window needs %d",
				ErrInsufficientData, season, len(values), windowSize)
		}
		profiles[season] = seasonProfile(season, values, windowSize)
	}
	return profiles, nil
}

func seasonProfile(season Season, values []float64, windowSize int) SeriesProfile {
	windows := len(values) - windowSize + 1
	p := SeriesProfile{
		Season:     season,
		WindowSize: windowSize,
		Samples:    len(values),
		Windows:    windows,
	}

	if lo, hi := minMax(values); lo == hi {
		// Exact for constant seasons; summing would drift by an ulp.
		p.Mean = lo
		return p
	}

	var sumMean, sumVar float64
	for end := windowSize; end <= len(values); end++ {
		m, v := meanVariance(values[end-windowSize : end])
		sumMean += m
		sumVar += v
	}
	p.Mean = sumMean / float64(windows)
	p.StdDev = math.Sqrt(math.Max(sumVar/float64(windows), 0))
	return p
}

// meanVariance returns the mean and population variance of values.
func meanVariance(values []float64) (mean, variance float64) {
	if lo, hi := minMax(values); lo == hi {
		return lo, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, variance / float64(len(values))
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// checkSeries verifies that observations share one city and are date ordered.
func checkSeries(observations []Observation) error {
	city := observations[0].City
	for i := 1; i < len(observations); i++ {
		if observations[i].City != city {
			return fmt.Errorf("%w: %q and %q", ErrMixedCities, city, observations[i].City)
		}
		if observations[i].Date.Before(observations[i-1].Date) {
			return fmt.Errorf("%w: %s precedes %s at index %d", ErrUnsortedObservations,
				observations[i].Date.Format("2006-01-02"), observations[i-1].Date.Format("2006-01-02"), i)
		}
	}
	return nil
}
