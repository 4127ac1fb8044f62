package climate

import "math"

// RollingBands computes a trailing rolling mean and population standard
// deviation over the whole series, with a ±sigma envelope. The first
// windowSize-1 bands are not Ready and carry only the observation.
func RollingBands(observations []Observation, windowSize int, sigma float64) ([]Band, error) {
	if windowSize < 1 {
		return nil, ErrInvalidWindow
	}
	if err := checkThreshold(sigma); err != nil {
		return nil, err
	}

	values := make([]float64, len(observations))
	for i, o := range observations {
		values[i] = o.Temperature
	}

	bands := make([]Band, len(observations))
	for i, o := range observations {
		bands[i] = Band{Date: o.Date, Temperature: o.Temperature}
		if i+1 < windowSize {
			continue
		}
		mean, variance := meanVariance(values[i+1-windowSize : i+1])
		std := math.Sqrt(variance)
		bands[i].Mean = mean
		bands[i].StdDev = std
		bands[i].Lower = mean - sigma*std
		bands[i].Upper = mean + sigma*std
		bands[i].Ready = true
	}
	return bands, nil
}
