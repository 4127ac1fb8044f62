package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
)

// Service fetches current conditions from all providers and aggregates them.
type Service struct {
	providers []Provider
	batch     BatchOptions
	log       logrus.FieldLogger
}

// NewService creates a new Service. batch bounds FetchMany calls.
func NewService(providers []Provider, batch BatchOptions, log logrus.FieldLogger) *Service {
	return &Service{
		providers: providers,
		batch:     batch,
		log:       log,
	}
}

// FetchCurrentTemperature queries every provider concurrently and averages
// the successful readings. When all providers fail their error is returned:
// as-is for a single provider, joined otherwise.
func (s *Service) FetchCurrentTemperature(ctx context.Context, city string) (climate.CurrentReading, error) {
	if len(s.providers) == 0 {
		return climate.CurrentReading{}, ErrNoProviders
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []Reading
		errs     []error
	)

	for _, p := range s.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, city)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Log and continue; we want partial success when possible.
				s.log.WithFields(logrus.Fields{"provider": p.Name(), "city": city}).
					WithError(err).Warn("provider fetch failed")
				errs = append(errs, err)
				return
			}
			readings = append(readings, r)
		}()
	}

	wg.Wait()

	if len(readings) == 0 {
		if len(errs) == 1 {
			return climate.CurrentReading{}, errs[0]
		}
		return climate.CurrentReading{}, errors.Join(errs...)
	}

	reading := AggregateReadings(city, readings)
	s.log.WithFields(logrus.Fields{
		"city":        city,
		"temperature": fmt.Sprintf("%.1f", reading.Temperature),
		"sources":     reading.Sources,
	}).Debug("current conditions fetched")
	return reading, nil
}

// FetchMany fetches many cities concurrently using the service's batch options.
func (s *Service) FetchMany(ctx context.Context, cities []string) map[string]Result {
	return FetchMany(ctx, s, cities, s.batch)
}

// Providers returns the names of the configured providers.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}
