package climate

import (
	"fmt"
	"math"
)

// ComputeTrend fits an ordinary least squares line through
// (days since the earliest observation, temperature).
func ComputeTrend(observations []Observation) (Trend, error) {
	n := len(observations)
	if n < 2 {
		return Trend{}, fmt.Errorf("%w: trend needs at least 2 points, got %d", ErrInsufficientData, n)
	}

	origin := observations[0].Date
	for _, o := range observations[1:] {
		if o.Date.Before(origin) {
			origin = o.Date
		}
	}

	var sumX, sumY float64
	xs := make([]float64, n)
	for i, o := range observations {
		xs[i] = daysSince(origin, o.Date)
		sumX += xs[i]
		sumY += o.Temperature
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy, syy float64
	for i, o := range observations {
		dx := xs[i] - meanX
		dy := o.Temperature - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return Trend{}, fmt.Errorf("%w: all %d points share one date", ErrInsufficientData, n)
	}

	slope := sxy / sxx
	t := Trend{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
		Origin:    origin,
		Points:    n,
	}
	if syy > 0 {
		t.RSquared = (sxy * sxy) / (sxx * syy)
	}

	df := float64(n - 2)
	switch {
	case df == 0:
		// Two points always fit exactly.
	case syy == 0:
		t.PValue = 1
	default:
		resid := math.Max(1-t.RSquared, 0)
		t.StdErr = math.Sqrt(resid * syy / sxx / df)
		if resid == 0 {
			break
		}
		tStat := math.Sqrt(t.RSquared) * math.Sqrt(df/resid)
		t.PValue = studentTwoSided(tStat, df)
	}
	return t, nil
}
