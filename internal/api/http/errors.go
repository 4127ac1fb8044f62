package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/dataset"
	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
	"github.com/i474232898/weather-anomaly-monitor/internal/store"
	"github.com/i474232898/weather-anomaly-monitor/internal/weather"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, monitor.ErrUnknownCity),
		errors.Is(err, monitor.ErrNoDataset),
		errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, climate.ErrInsufficientData),
		errors.Is(err, climate.ErrMissingProfile):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, climate.ErrInvalidThreshold),
		errors.Is(err, climate.ErrInvalidWindow),
		errors.Is(err, dataset.ErrMissingColumn),
		errors.Is(err, dataset.ErrMissingField),
		errors.Is(err, dataset.ErrInvalidTemperature),
		errors.Is(err, dataset.ErrInvalidDate),
		errors.Is(err, dataset.ErrNoData):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, weather.ErrNetwork):
		return fiber.StatusBadGateway
	case errors.Is(err, weather.ErrNotConfigured),
		errors.Is(err, weather.ErrNoProviders):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func toHTTPError(err error) error {
	return fiber.NewError(statusFor(err), err.Error())
}
