package cli

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

func newCheckCommand(a *app) *cobra.Command {
	var (
		dataPath    string
		concurrency int
		timeout     time.Duration
		compare     bool
	)

	cmd := &cobra.Command{
		Use:   "check [city...]",
		Short: "Fetch current temperatures and compare them with seasonal profiles",
		Long:  `Fetches live readings for the given cities (all dataset cities when none are given) and classifies each against its seasonal profile.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			if f.Changed("data") {
				a.cfg.DataPath = dataPath
			}
			if f.Changed("concurrency") {
				a.cfg.FetchConcurrency = concurrency
			}
			if f.Changed("timeout") {
				a.cfg.FetchTimeout = timeout
			}
			if a.cfg.DataPath == "" {
				return errors.New("no dataset: pass --data or set DATA_PATH")
			}

			weatherSvc, err := a.newWeatherService()
			if err != nil {
				return err
			}
			svc, err := a.newMonitor(weatherSvc)
			if err != nil {
				return err
			}
			if err := a.loadDataset(cmd.Context(), svc, a.cfg.DataPath, ""); err != nil {
				return err
			}

			if compare {
				a.compare(cmd.Context(), svc, args)
			}

			results, failures := svc.CheckAll(cmd.Context(), args)
			renderChecks(cmd.OutOrStdout(), results, failures)
			if len(results) == 0 && len(failures) > 0 {
				return errors.New("all checks failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "historical CSV dataset (overrides DATA_PATH)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent fetches (overrides FETCH_CONCURRENCY)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-city fetch timeout (overrides FETCH_TIMEOUT)")
	cmd.Flags().BoolVar(&compare, "compare", false, "time a sequential run against the concurrent batch first")
	return cmd
}

// compare times one-by-one checks against a single concurrent batch. Neither
// pass records its results.
func (a *app) compare(ctx context.Context, svc *monitor.Service, cities []string) {
	if len(cities) == 0 {
		cities = svc.Cities()
	}

	start := time.Now()
	sequentialFailed := 0
	for _, city := range cities {
		callCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
		if _, err := svc.Evaluate(callCtx, city); err != nil {
			sequentialFailed++
		}
		cancel()
	}
	sequential := time.Since(start)

	start = time.Now()
	_, failures := svc.EvaluateAll(ctx, cities)
	concurrent := time.Since(start)

	speedup := 0.0
	if concurrent > 0 {
		speedup = sequential.Seconds() / concurrent.Seconds()
	}
	a.log.WithFields(logrus.Fields{
		"cities":            len(cities),
		"sequential":        sequential.Round(time.Millisecond),
		"sequential_failed": sequentialFailed,
		"concurrent":        concurrent.Round(time.Millisecond),
		"concurrent_failed": len(failures),
		"speedup":           speedup,
	}).Info("sequential vs concurrent fetch")
}
