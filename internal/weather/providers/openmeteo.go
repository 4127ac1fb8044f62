package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-anomaly-monitor/internal/weather"
)

type coordinates struct {
	Lat, Lon float64
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key; city names are resolved with the Open-Meteo geocoding
// API and cached.
type OpenMeteoProvider struct {
	name       string
	baseURL    string
	geocodeURL string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
	geocodes   *weather.CityCache[coordinates]
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:       "openmeteo",
		baseURL:    "https://api.open-meteo.com/v1/forecast",
		geocodeURL: "https://geocoding-api.open-meteo.com/v1/search",
		httpCfg:    HTTPClientConfig{Client: client},
		circuit:    newBreaker("openmeteo"),
		geocodes:   weather.NewCityCache[coordinates](24*time.Hour, nil),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	loc, err := p.geocode(ctx, city)
	if err != nil {
		return weather.Reading{}, err
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
	values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
	values.Set("current", "temperature_2m,apparent_temperature,weather_code")
	values.Set("timezone", "GMT")

	var payload struct {
		Current struct {
			Time                string  `json:"time"`
			Temperature         float64 `json:"temperature_2m"`
			ApparentTemperature float64 `json:"apparent_temperature"`
			WeatherCode         int     `json:"weather_code"`
		} `json:"current"`
	}

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.name, u, &payload); err != nil {
		return weather.Reading{}, err
	}

	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.Reading{
		ProviderName: p.name,
		City:         city,
		ObservedAt:   ts.UTC(),
		TemperatureC: payload.Current.Temperature,
		FeelsLikeC:   payload.Current.ApparentTemperature,
		Description:  describeOpenMeteoCode(payload.Current.WeatherCode),
	}, nil
}

func (p *OpenMeteoProvider) geocode(ctx context.Context, city string) (coordinates, error) {
	if c, ok := p.geocodes.Get(city); ok {
		return c, nil
	}

	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	u := fmt.Sprintf("%s?%s", p.geocodeURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.name, u, &payload); err != nil {
		return coordinates{}, err
	}
	if len(payload.Results) == 0 {
		return coordinates{}, fmt.Errorf("%w: %s: city %q not found", weather.ErrNetwork, p.name, city)
	}

	c := coordinates{Lat: payload.Results[0].Latitude, Lon: payload.Results[0].Longitude}
	p.geocodes.Set(city, c)
	return c, nil
}

// describeOpenMeteoCode maps WMO weather codes to short descriptions (simplified).
func describeOpenMeteoCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code >= 1 && code <= 3:
		return "partly cloudy"
	case code == 45 || code == 48:
		return "fog"
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return "rain"
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return "snow"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
