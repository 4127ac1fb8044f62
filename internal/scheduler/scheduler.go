package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

// Checker runs one batch of live checks.
type Checker interface {
	CheckAll(ctx context.Context, cities []string) ([]monitor.CheckResult, map[string]error)
}

// Scheduler periodically checks current conditions for configured cities.
type Scheduler struct {
	scheduler *gocron.Scheduler
	checker   Checker
	cities    []string
	interval  time.Duration
	timeout   time.Duration
	log       logrus.FieldLogger

	mu      sync.Mutex
	started bool
}

// New creates a new Scheduler. An empty cities list checks every dataset city.
// timeout bounds a single run.
func New(cities []string, interval, timeout time.Duration, checker Checker, log logrus.FieldLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		checker:   checker,
		cities:    cities,
		interval:  interval,
		timeout:   timeout,
		log:       log.WithField("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// Calls after the first successful one do nothing.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.Run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.started = true
	s.log.WithField("interval", interval).Info("monitor job scheduled")
	return nil
}

// Run performs one batch of checks and logs the outcome.
func (s *Scheduler) Run() {
	log := s.log.WithField("run", uuid.NewString())
	log.Info("running current conditions check")

	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	results, failures := s.checker.CheckAll(ctx, s.cities)

	anomalies := 0
	for _, r := range results {
		if r.Flag.IsAnomalous {
			anomalies++
		}
	}
	for city, err := range failures {
		log.WithField("city", city).WithError(err).Warn("check failed")
	}

	log.WithFields(logrus.Fields{
		"checked":   len(results),
		"failed":    len(failures),
		"anomalies": anomalies,
		"duration":  time.Since(start),
	}).Info("completed current conditions check")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
