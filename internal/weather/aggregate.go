package weather

import (
	"sort"
	"time"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
)

// AggregateReadings combines provider readings into one CurrentReading.
// Temperatures are averaged; the description is picked by majority (ties go
// to the first seen) and the newest observation time wins.
func AggregateReadings(city string, readings []Reading) climate.CurrentReading {
	if len(readings) == 0 {
		return climate.CurrentReading{City: city, ObservedAt: time.Now().UTC()}
	}

	var sumTemp, sumFeels float64
	descCounts := make(map[string]int)
	var descOrder []string
	sources := make([]string, 0, len(readings))
	var newestTS time.Time

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumFeels += r.FeelsLikeC

		if r.Description != "" {
			if descCounts[r.Description] == 0 {
				descOrder = append(descOrder, r.Description)
			}
			descCounts[r.Description]++
		}
		if r.ObservedAt.After(newestTS) {
			newestTS = r.ObservedAt
		}
		sources = append(sources, r.ProviderName)
	}

	n := float64(len(readings))

	bestDesc := ""
	bestCount := 0
	for _, d := range descOrder {
		if descCounts[d] > bestCount {
			bestCount = descCounts[d]
			bestDesc = d
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now().UTC()
	}
	sort.Strings(sources)

	return climate.CurrentReading{
		City:        city,
		Temperature: sumTemp / n,
		FeelsLike:   sumFeels / n,
		Description: bestDesc,
		ObservedAt:  newestTS,
		Sources:     sources,
	}
}
