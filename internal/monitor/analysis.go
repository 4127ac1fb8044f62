package monitor

import (
	"math"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
)

// AnalyzeCity runs the full historical analysis for one city's sorted series.
func AnalyzeCity(city string, observations []climate.Observation, params Params) Analysis {
	a := Analysis{City: city, Observations: observations}

	profiles, err := climate.ComputeProfile(observations, params.WindowSize)
	if err != nil {
		a.Err = err
	} else {
		a.Profiles = profiles
		flags, err := climate.DetectAnomalies(observations, profiles, params.SigmaThreshold)
		if err != nil {
			a.Err = err
		}
		a.Flags = flags
	}

	if trend, err := climate.ComputeTrend(observations); err == nil {
		a.Trend = &trend
	}
	if bands, err := climate.RollingBands(observations, params.WindowSize, params.SigmaThreshold); err == nil {
		a.Bands = bands
	}
	return a
}

// Summarize condenses an analysis into a Summary.
func Summarize(a Analysis) Summary {
	s := Summary{City: a.City, Observations: len(a.Observations)}
	if a.Err != nil {
		s.Error = a.Err.Error()
	}
	if len(a.Observations) == 0 {
		return s
	}

	s.From = a.Observations[0].Date
	s.To = a.Observations[len(a.Observations)-1].Date
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, o := range a.Observations {
		sum += o.Temperature
		s.Min = math.Min(s.Min, o.Temperature)
		s.Max = math.Max(s.Max, o.Temperature)
	}
	s.Mean = sum / float64(len(a.Observations))
	var sq float64
	for _, o := range a.Observations {
		d := o.Temperature - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(len(a.Observations)))

	s.Anomalies = climate.CountAnomalies(a.Flags)
	if len(a.Flags) > 0 {
		s.AnomalyPct = float64(s.Anomalies) / float64(len(a.Flags)) * 100
	}
	if a.Trend != nil {
		perYear, r2, pValue := a.Trend.PerYear(), a.Trend.RSquared, a.Trend.PValue
		s.TrendPerYear, s.RSquared, s.TrendPValue = &perYear, &r2, &pValue
	}
	for _, season := range climate.Seasons() {
		if p, ok := a.Profiles[season]; ok {
			s.Profiles = append(s.Profiles, p)
		}
	}
	return s
}
