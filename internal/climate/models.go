package climate

import (
	"math"
	"time"
)

// Observation is a single historical temperature measurement for a city.
type Observation struct {
	City        string    `json:"city" yaml:"city"`
	Date        time.Time `json:"date" yaml:"date"`
	Temperature float64   `json:"temperatureC" yaml:"temperatureC"`
}

// SeriesProfile describes the rolling statistics of one season for one city.
// StdDev is never negative.
type SeriesProfile struct {
	Season     Season  `json:"season" yaml:"season"`
	Mean       float64 `json:"mean" yaml:"mean"`
	StdDev     float64 `json:"stdDev" yaml:"stdDev"`
	WindowSize int     `json:"windowSize" yaml:"windowSize"`

	// Samples is the number of observations in the season bucket,
	// Windows the number of rolling windows averaged into Mean/StdDev.
	Samples int `json:"samples" yaml:"samples"`
	Windows int `json:"windows" yaml:"windows"`
}

// Bounds returns the normal range mean ± sigma*stddev.
func (p SeriesProfile) Bounds(sigma float64) (lower, upper float64) {
	return p.Mean - sigma*p.StdDev, p.Mean + sigma*p.StdDev
}

// Profiles maps a season to its profile. Seasons without data are absent.
type Profiles map[Season]SeriesProfile

// Status is a human readable classification of a flag.
type Status string

const (
	StatusNormal Status = "within normal range"
	StatusColder Status = "colder than normal"
	StatusWarmer Status = "warmer than normal"
)

// AnomalyFlag is the derived verdict for one observation.
// DeviationSigma is ±Inf when the season profile has zero spread and the
// temperature differs from its mean.
type AnomalyFlag struct {
	Observation    Observation `json:"observation" yaml:"observation"`
	IsAnomalous    bool        `json:"isAnomalous" yaml:"isAnomalous"`
	DeviationSigma float64     `json:"deviationSigma" yaml:"deviationSigma"`
}

// Status reports whether the flagged temperature is colder, warmer or within range.
func (f AnomalyFlag) Status() Status {
	switch {
	case !f.IsAnomalous:
		return StatusNormal
	case f.DeviationSigma < 0:
		return StatusColder
	default:
		return StatusWarmer
	}
}

// Unbounded reports whether the deviation is infinite (zero-spread profile).
func (f AnomalyFlag) Unbounded() bool {
	return math.IsInf(f.DeviationSigma, 0)
}

// CurrentReading is a live temperature supplied by a weather provider.
type CurrentReading struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Description string    `json:"description,omitempty"`
	ObservedAt  time.Time `json:"observedAt"`

	// Sources lists the providers that contributed to this reading.
	Sources []string `json:"sources,omitempty"`
}

// Trend is an ordinary least squares fit temperature = Intercept + Slope*days,
// where days are counted from Origin.
type Trend struct {
	Slope     float64   `json:"slopePerDay" yaml:"slopePerDay"`
	Intercept float64   `json:"intercept" yaml:"intercept"`
	RSquared  float64   `json:"rSquared" yaml:"rSquared"`
	// PValue is the two-sided p-value of a zero slope; StdErr the slope's
	// standard error. Both are 0 for a two-point fit.
	PValue float64   `json:"pValue" yaml:"pValue"`
	StdErr float64   `json:"stdErr" yaml:"stdErr"`
	Origin time.Time `json:"origin" yaml:"origin"`
	Points    int       `json:"points" yaml:"points"`
}

// PerYear returns the slope expressed in °C per year.
func (t Trend) PerYear() float64 {
	return t.Slope * 365
}

// At evaluates the trend line at ts.
func (t Trend) At(ts time.Time) float64 {
	return t.Intercept + t.Slope*daysSince(t.Origin, ts)
}

// Band is the trailing rolling mean and its ±sigma envelope at one observation.
// Ready is false until a full window is available.
type Band struct {
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperatureC"`
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"stdDev"`
	Lower       float64   `json:"lower"`
	Upper       float64   `json:"upper"`
	Ready       bool      `json:"ready"`
}

func daysSince(origin, ts time.Time) float64 {
	return ts.Sub(origin).Hours() / 24
}
