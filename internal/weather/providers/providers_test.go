package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-anomaly-monitor/internal/weather"
)

func TestOpenWeatherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Rio de Janeiro" || q.Get("appid") != "secret" || q.Get("units") != "metric" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"dt":1700000000,"main":{"temp":36.01,"feels_like":39.2},"weather":[{"description":"clear sky"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	r, err := p.Fetch(context.Background(), "Rio de Janeiro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TemperatureC != 36.01 || r.FeelsLikeC != 39.2 || r.Description != "clear sky" {
		t.Errorf("unexpected reading %+v", r)
	}
	if !r.ObservedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("unexpected timestamp %v", r.ObservedAt)
	}
	if r.ProviderName != "openweathermap" {
		t.Errorf("unexpected provider %q", r.ProviderName)
	}
}

func TestOpenWeatherRequiresKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")
	if _, err := p.Fetch(context.Background(), "Berlin"); !errors.Is(err, weather.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStatusErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "bad")
	p.baseURL = srv.URL

	_, err := p.Fetch(context.Background(), "Berlin")
	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	var statusErr *weather.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected wrapped 401 status error, got %v", err)
	}
}

func TestTimeoutIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "key")
	p.baseURL = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Fetch(ctx, "Berlin")
	if !errors.Is(err, weather.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestNoRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "key")
	p.baseURL = srv.URL

	if _, err := p.Fetch(context.Background(), "Berlin"); !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", hits.Load())
	}
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "key")
	p.baseURL = srv.URL

	var err error
	for i := 0; i < 7; i++ {
		_, err = p.Fetch(context.Background(), "Berlin")
	}
	if !errors.Is(err, weather.ErrNetwork) || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("expected open circuit error, got %v", err)
	}
	if hits.Load() != 5 {
		t.Fatalf("expected requests to stop after 5 failures, got %d", hits.Load())
	}
}

func TestUnknownCityDoesNotOpenCircuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Atlantis" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"cod":"404","message":"city not found"}`))
			return
		}
		w.Write([]byte(`{"dt":1700000000,"main":{"temp":12.5,"feels_like":11},"weather":[{"description":"mist"}]}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	for i := 0; i < 10; i++ {
		_, err := p.Fetch(context.Background(), "Atlantis")
		var statusErr *weather.StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
			t.Fatalf("attempt %d: expected 404 status error, got %v", i, err)
		}
	}

	r, err := p.Fetch(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("known city must still be fetched, got %v", err)
	}
	if r.TemperatureC != 12.5 {
		t.Errorf("unexpected reading %+v", r)
	}
}

func TestTooManyRequestsOpensCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "secret")
	p.baseURL = srv.URL

	var err error
	for i := 0; i < 6; i++ {
		_, err = p.Fetch(context.Background(), "Berlin")
	}
	if !strings.Contains(err.Error(), "circuit breaker open") || hits.Load() != 5 {
		t.Fatalf("expected 429s to trip the breaker after 5 hits, got %d hits, err %v", hits.Load(), err)
	}
}

func TestWeatherAPIFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Dubai" || r.URL.Query().Get("key") != "k" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"current":{"last_updated_epoch":1700000100,"temp_c":31.5,"feelslike_c":35.0,"condition":{"text":"Sunny "}}}`))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "k")
	p.baseURL = srv.URL

	r, err := p.Fetch(context.Background(), "Dubai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TemperatureC != 31.5 || r.FeelsLikeC != 35 || r.Description != "sunny" {
		t.Errorf("unexpected reading %+v", r)
	}
}

func TestOpenMeteoFetchCachesGeocoding(t *testing.T) {
	var geocodes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		geocodes.Add(1)
		if r.URL.Query().Get("name") != "Beijing" {
			t.Errorf("unexpected geocode query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"results":[{"latitude":39.9,"longitude":116.4}]}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Query().Get("latitude"), "39.9") {
			t.Errorf("unexpected forecast query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"current":{"time":"2024-07-01T06:00","temperature_2m":29.3,"apparent_temperature":31.0,"weather_code":0}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL + "/forecast"
	p.geocodeURL = srv.URL + "/search"

	for i := 0; i < 2; i++ {
		r, err := p.Fetch(context.Background(), "Beijing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.TemperatureC != 29.3 || r.Description != "clear sky" {
			t.Errorf("unexpected reading %+v", r)
		}
		if !r.ObservedAt.Equal(time.Date(2024, time.July, 1, 6, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected timestamp %v", r.ObservedAt)
		}
	}
	if geocodes.Load() != 1 {
		t.Fatalf("expected geocoding to be cached, got %d lookups", geocodes.Load())
	}
}

func TestOpenMeteoUnknownCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client())
	p.geocodeURL = srv.URL

	if _, err := p.Fetch(context.Background(), "Atlantis"); !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestOpenMeteoGeocodeExpires(t *testing.T) {
	var geocodes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		geocodes.Add(1)
		w.Write([]byte(`{"results":[{"latitude":59.9,"longitude":10.7}]}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"time":"2024-01-15T12:00","temperature_2m":-4,"apparent_temperature":-8,"weather_code":71}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	p := NewOpenMeteoProvider(srv.Client())
	p.baseURL = srv.URL + "/forecast"
	p.geocodeURL = srv.URL + "/search"
	p.geocodes = weather.NewCityCache[coordinates](time.Hour, func() time.Time { return now })

	for _, city := range []string{"Oslo", "oslo", " OSLO "} {
		if _, err := p.Fetch(context.Background(), city); err != nil {
			t.Fatalf("Fetch(%q): %v", city, err)
		}
	}
	if geocodes.Load() != 1 {
		t.Fatalf("spellings of one city should share a geocode, got %d lookups", geocodes.Load())
	}

	now = now.Add(time.Hour)
	if _, err := p.Fetch(context.Background(), "Oslo"); err != nil {
		t.Fatal(err)
	}
	if geocodes.Load() != 2 {
		t.Fatalf("expired geocode should be looked up again, got %d lookups", geocodes.Load())
	}
}
