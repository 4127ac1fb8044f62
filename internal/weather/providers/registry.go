package providers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/weather-anomaly-monitor/internal/weather"
)

// Keys holds provider credentials.
type Keys struct {
	OpenWeather string
	WeatherAPI  string
}

// Build constructs the named providers sharing one HTTP client. Known names
// are openweathermap, weatherapi and openmeteo.
func Build(names []string, client *http.Client, keys Keys) ([]weather.Provider, error) {
	var provs []weather.Provider
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
			continue
		case "openweathermap", "openweather":
			provs = append(provs, NewOpenWeatherProvider(client, keys.OpenWeather))
		case "weatherapi":
			provs = append(provs, NewWeatherAPIProvider(client, keys.WeatherAPI))
		case "openmeteo", "open-meteo":
			provs = append(provs, NewOpenMeteoProvider(client))
		default:
			return nil, fmt.Errorf("unknown weather provider %q", name)
		}
	}
	return provs, nil
}
