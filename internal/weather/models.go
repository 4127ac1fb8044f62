package weather

import (
	"time"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
)

// Reading is a single provider's normalized current conditions.
type Reading struct {
	ProviderName string
	City         string
	ObservedAt   time.Time // always UTC

	TemperatureC float64
	FeelsLikeC   float64
	Description  string
}

// Result is the outcome of fetching one city in a batch.
type Result struct {
	Reading climate.CurrentReading
	Err     error
}
