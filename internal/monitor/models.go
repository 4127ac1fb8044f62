package monitor

import (
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
)

// Params are the analysis settings fixed for the lifetime of a loaded dataset.
type Params struct {
	WindowSize     int     `validate:"gte=1"`
	SigmaThreshold float64 `validate:"finite,gte=0"`
	// Workers bounds concurrent per-city analysis; 0 means 4.
	Workers int `validate:"gte=0"`
}

// Analysis is everything derived from one city's historical series.
// Err records why profiling failed; Trend and Bands may still be set.
type Analysis struct {
	City         string
	Observations []climate.Observation
	Profiles     climate.Profiles
	Flags        []climate.AnomalyFlag
	Trend        *climate.Trend
	Bands        []climate.Band
	Err          error
}

// CheckResult is a live reading classified against a city's profile.
type CheckResult struct {
	ID        uuid.UUID              `json:"id"`
	City      string                 `json:"city"`
	Reading   climate.CurrentReading `json:"reading"`
	Flag      climate.AnomalyFlag    `json:"-"`
	Profile   climate.SeriesProfile  `json:"profile"`
	Lower     float64                `json:"lower"`
	Upper     float64                `json:"upper"`
	Status    climate.Status         `json:"status"`
	CheckedAt time.Time              `json:"checkedAt"`
}

// Summary is a compact per-city report.
type Summary struct {
	City         string                  `json:"city" yaml:"city"`
	Observations int                     `json:"observations" yaml:"observations"`
	From         time.Time               `json:"from" yaml:"from"`
	To           time.Time               `json:"to" yaml:"to"`
	Mean         float64                 `json:"mean" yaml:"mean"`
	StdDev       float64                 `json:"stdDev" yaml:"stdDev"`
	Min          float64                 `json:"min" yaml:"min"`
	Max          float64                 `json:"max" yaml:"max"`
	Anomalies    int                     `json:"anomalies" yaml:"anomalies"`
	AnomalyPct   float64                 `json:"anomalyPct" yaml:"anomalyPct"`
	TrendPerYear *float64                `json:"trendPerYear,omitempty" yaml:"trendPerYear,omitempty"`
	RSquared     *float64                `json:"rSquared,omitempty" yaml:"rSquared,omitempty"`
	TrendPValue  *float64                `json:"trendPValue,omitempty" yaml:"trendPValue,omitempty"`
	Profiles     []climate.SeriesProfile `json:"profiles" yaml:"profiles"`
	Error        string                  `json:"error,omitempty" yaml:"error,omitempty"`
}
