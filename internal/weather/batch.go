package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/common"
)

// BatchOptions bounds a FetchMany call.
type BatchOptions struct {
	// Concurrency is the maximum number of in-flight fetches (<= 0 means 1).
	Concurrency int
	// Timeout applies to each fetch individually (0 disables it).
	Timeout time.Duration
	// RatePerSecond throttles fetch starts (0 disables throttling).
	RatePerSecond float64
	Burst         int
}

func (o BatchOptions) concurrency() int {
	if o.Concurrency <= 0 {
		return 1
	}
	return o.Concurrency
}

func (o BatchOptions) limiter() *rate.Limiter {
	if o.RatePerSecond <= 0 {
		return nil
	}
	burst := o.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(o.RatePerSecond), burst)
}

// FetchMany fetches the current temperature of every city through f with
// bounded parallelism. Each city gets its own Result; a failing city never
// fails the rest. Cities are deduplicated by CityKey and results are keyed by
// the first spelling given.
func FetchMany(ctx context.Context, f climate.TemperatureFetcher, cities []string, opts BatchOptions) map[string]Result {
	unique := common.UniqueCities(cities)
	results := make(map[string]Result, len(unique))
	limiter := opts.limiter()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(opts.concurrency())

	for _, city := range unique {
		g.Go(func() error {
			res := fetchOne(ctx, f, city, opts.Timeout, limiter)
			mu.Lock()
			results[city] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func fetchOne(ctx context.Context, f climate.TemperatureFetcher, city string, timeout time.Duration, limiter *rate.Limiter) Result {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if limiter != nil {
		if err := limiter.Wait(callCtx); err != nil {
			return Result{Err: contextError(callCtx, city, err)}
		}
	}

	done := make(chan Result, 1)
	go func() {
		r, err := f.FetchCurrentTemperature(callCtx, city)
		done <- Result{Reading: r, Err: err}
	}()

	select {
	case res := <-done:
		return res
	case <-callCtx.Done():
		// The fetcher may ignore its context; do not wait for it.
		return Result{Err: contextError(callCtx, city, callCtx.Err())}
	}
}

func contextError(ctx context.Context, city string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, city, context.DeadlineExceeded)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %w", ErrTimeout, city, err)
}
