package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/i474232898/weather-anomaly-monitor/internal/dataset"
	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
	"github.com/i474232898/weather-anomaly-monitor/internal/store"
	"github.com/i474232898/weather-anomaly-monitor/internal/weather"
	"github.com/i474232898/weather-anomaly-monitor/internal/weather/providers"
)

// newWeatherService builds the configured providers behind one shared client.
func (a *app) newWeatherService() (*weather.Service, error) {
	httpClient := &http.Client{
		Timeout: a.cfg.HTTPTimeout,
	}

	provs, err := providers.Build(a.cfg.Providers, httpClient, providers.Keys{
		OpenWeather: a.cfg.OpenWeatherAPIKey,
		WeatherAPI:  a.cfg.WeatherAPIKey,
	})
	if err != nil {
		return nil, err
	}

	return weather.NewService(provs, weather.BatchOptions{
		Concurrency:   a.cfg.FetchConcurrency,
		Timeout:       a.cfg.FetchTimeout,
		RatePerSecond: a.cfg.FetchRatePerSec,
	}, a.log), nil
}

func (a *app) newMonitor(fetcher monitor.Fetcher) (*monitor.Service, error) {
	memStore := store.NewMemoryStore(a.cfg.StoreMaxHistory, a.cfg.StoreMaxAge)
	return monitor.NewService(fetcher, memStore, monitor.Params{
		WindowSize:     a.cfg.WindowSize,
		SigmaThreshold: a.cfg.SigmaThreshold,
	}, a.log)
}

// loadDataset reads path, optionally keeping a single city, into svc.
func (a *app) loadDataset(ctx context.Context, svc *monitor.Service, path, city string) error {
	opts := dataset.DefaultOptions()
	opts.City = city
	ds, err := dataset.Load(path, opts)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", path, err)
	}
	return svc.LoadDataset(ctx, ds)
}
