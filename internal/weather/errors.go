package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers transport failures, bad responses and open circuits.
	ErrNetwork = errors.New("network error")
	// ErrTimeout is returned when a fetch exceeds its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrNotConfigured is returned by providers missing credentials.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrNoProviders is returned when a Service has nothing to query.
	ErrNoProviders = errors.New("no weather providers configured")
)

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d", e.Provider, e.StatusCode)
}
