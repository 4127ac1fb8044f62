package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

// JSON has no infinity, so unbounded deviations are sent as null with
// Unbounded set.

type flagResponse struct {
	Date           time.Time      `json:"date"`
	Temperature    float64        `json:"temperatureC"`
	IsAnomalous    bool           `json:"isAnomalous"`
	DeviationSigma *float64       `json:"deviationSigma"`
	Unbounded      bool           `json:"unbounded,omitempty"`
	Status         climate.Status `json:"status"`
}

func newFlagResponse(f climate.AnomalyFlag) flagResponse {
	r := flagResponse{
		Date:        f.Observation.Date,
		Temperature: f.Observation.Temperature,
		IsAnomalous: f.IsAnomalous,
		Unbounded:   f.Unbounded(),
		Status:      f.Status(),
	}
	if !r.Unbounded {
		d := f.DeviationSigma
		r.DeviationSigma = &d
	}
	return r
}

type profileResponse struct {
	climate.SeriesProfile
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type checkResponse struct {
	ID        uuid.UUID              `json:"id"`
	City      string                 `json:"city"`
	Reading   climate.CurrentReading `json:"reading"`
	Profile   profileResponse        `json:"profile"`
	Flag      flagResponse           `json:"flag"`
	Status    climate.Status         `json:"status"`
	CheckedAt time.Time              `json:"checkedAt"`
}

func newCheckResponse(r monitor.CheckResult) checkResponse {
	return checkResponse{
		ID:        r.ID,
		City:      r.City,
		Reading:   r.Reading,
		Profile:   profileResponse{SeriesProfile: r.Profile, Lower: r.Lower, Upper: r.Upper},
		Flag:      newFlagResponse(r.Flag),
		Status:    r.Status,
		CheckedAt: r.CheckedAt,
	}
}

type trendResponse struct {
	climate.Trend
	PerYear float64 `json:"slopePerYear"`
}
