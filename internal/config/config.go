package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// Providers to query for live readings, in order.
	Providers []string `validate:"min=1,dive,oneof=openweathermap openweather weatherapi openmeteo open-meteo"`

	// DataPath is the CSV dataset loaded at startup (optional for serve).
	DataPath string

	WindowSize     int     `validate:"gte=1"`
	SigmaThreshold float64 `validate:"finite,gte=0"`

	// Cities checked periodically; empty means every dataset city.
	MonitorCities   []string
	MonitorInterval time.Duration `validate:"gt=0"`

	HTTPTimeout      time.Duration `validate:"gt=0"`
	FetchTimeout     time.Duration `validate:"gt=0"`
	FetchConcurrency int           `validate:"gte=1"`
	FetchRatePerSec  float64       `validate:"gte=0"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max checks per city (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of checks (0 = unlimited)

	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFile  string
}

var validate = newValidator()

// newValidator adds a "finite" tag rejecting NaN and ±Inf floats.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("openweather_api_key", "")
	v.SetDefault("weatherapi_api_key", "")
	v.SetDefault("providers", "")
	v.SetDefault("data_path", "")
	v.SetDefault("window_size", 30)
	v.SetDefault("sigma_threshold", 2.0)
	v.SetDefault("monitor_cities", "")
	v.SetDefault("monitor_interval", "15m")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("fetch_timeout", "5s")
	v.SetDefault("fetch_concurrency", 4)
	v.SetDefault("fetch_rate_per_sec", 0.0)
	v.SetDefault("store_max_history", 96) // roughly 24h at 15-minute intervals
	v.SetDefault("store_max_age", "24h")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads configuration from .env, the environment and an optional YAML
// file. Environment variables take precedence over the file. With an empty
// cfgFile, ./config.yaml is used when present.
func Load(cfgFile string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey: v.GetString("openweather_api_key"),
		WeatherAPIKey:     v.GetString("weatherapi_api_key"),
		DataPath:          v.GetString("data_path"),
		WindowSize:        v.GetInt("window_size"),
		SigmaThreshold:    v.GetFloat64("sigma_threshold"),
		MonitorCities:     stringList(v.Get("monitor_cities")),
		FetchConcurrency:  v.GetInt("fetch_concurrency"),
		FetchRatePerSec:   v.GetFloat64("fetch_rate_per_sec"),
		StoreMaxHistory:   v.GetInt("store_max_history"),
		Port:              v.GetString("port"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
		LogFile:           v.GetString("log_file"),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"monitor_interval", &cfg.MonitorInterval},
		{"http_timeout", &cfg.HTTPTimeout},
		{"fetch_timeout", &cfg.FetchTimeout},
		{"store_max_age", &cfg.StoreMaxAge},
	}
	for _, d := range durations {
		raw := v.GetString(d.key)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(d.key), err)
		}
		*d.dst = parsed
	}

	cfg.Providers = stringList(v.Get("providers"))
	if len(cfg.Providers) == 0 {
		cfg.Providers = defaultProviders(cfg)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// defaultProviders enables every keyed provider with a key, plus Open-Meteo.
func defaultProviders(cfg *AppConfig) []string {
	var out []string
	if cfg.OpenWeatherAPIKey != "" {
		out = append(out, "openweathermap")
	}
	if cfg.WeatherAPIKey != "" {
		out = append(out, "weatherapi")
	}
	return append(out, "openmeteo")
}

// stringList accepts a comma-separated string (env) or a YAML list.
func stringList(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
	}

	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
