package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-anomaly-monitor/internal/weather"
)

// HTTPClientConfig bundles the HTTP client and breaker settings shared by providers.
type HTTPClientConfig struct {
	Client *http.Client
}

var errNoHTTPClient = errors.New("http client not configured")

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: breakerSuccess,
	})
}

// breakerSuccess reports whether err leaves the provider healthy. A 4xx answer
// (unknown city, bad key) is about the request, not the provider; 429 is not.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var statusErr *weather.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
		statusErr.StatusCode != http.StatusTooManyRequests
}

// getJSON performs a single GET through the circuit breaker and decodes the
// JSON body into out. There are no retries; every failure is classified as
// weather.ErrTimeout or weather.ErrNetwork.
func getJSON(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, provider, url string, out any) error {
	if cfg.Client == nil {
		return fmt.Errorf("%w: %s: %w", weather.ErrNetwork, provider, errNoHTTPClient)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", weather.ErrNetwork, provider, err)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &weather.StatusError{Provider: provider, StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		return classify(ctx, provider, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return fmt.Errorf("%w: %s: unexpected result type from circuit breaker", weather.ErrNetwork, provider)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return classify(ctx, provider, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// classify maps a transport level error onto the weather error kinds.
func classify(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", weather.ErrTimeout, provider, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", weather.ErrTimeout, provider, err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: circuit breaker open: %w", weather.ErrNetwork, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", weather.ErrNetwork, provider, err)
}

func observedAt(unix int64) time.Time {
	if unix <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(unix, 0).UTC()
}
