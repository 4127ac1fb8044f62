package climate

import (
	"context"
	"fmt"
)

// TemperatureFetcher supplies the current temperature of a city.
// Implementations report failures as weather.ErrNetwork or weather.ErrTimeout.
type TemperatureFetcher interface {
	FetchCurrentTemperature(ctx context.Context, city string) (CurrentReading, error)
}

// Classify compares a live reading against the profile of the season its
// ObservedAt falls in.
func Classify(reading CurrentReading, profiles Profiles, sigmaThreshold float64) (AnomalyFlag, error) {
	if err := checkThreshold(sigmaThreshold); err != nil {
		return AnomalyFlag{}, err
	}
	season := SeasonAt(reading.ObservedAt)
	p, ok := profiles[season]
	if !ok {
		return AnomalyFlag{}, fmt.Errorf("%w: %s for %s", ErrMissingProfile, season, reading.City)
	}
	obs := Observation{
		City:        reading.City,
		Date:        reading.ObservedAt,
		Temperature: reading.Temperature,
	}
	return flagObservation(obs, p, sigmaThreshold), nil
}

// Checker fetches a live reading and classifies it.
type Checker struct {
	fetcher TemperatureFetcher
	sigma   float64
}

// NewChecker creates a Checker using the given fetcher and threshold.
func NewChecker(fetcher TemperatureFetcher, sigmaThreshold float64) *Checker {
	return &Checker{fetcher: fetcher, sigma: sigmaThreshold}
}

// Check fetches the current reading for city and classifies it. Fetch errors
// are returned as-is.
func (c *Checker) Check(ctx context.Context, city string, profiles Profiles) (CurrentReading, AnomalyFlag, error) {
	reading, err := c.fetcher.FetchCurrentTemperature(ctx, city)
	if err != nil {
		return CurrentReading{}, AnomalyFlag{}, err
	}
	flag, err := Classify(reading, profiles, c.sigma)
	if err != nil {
		return reading, AnomalyFlag{}, err
	}
	return reading, flag, nil
}
