package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/common"
	"github.com/i474232898/weather-anomaly-monitor/internal/dataset"
	"github.com/i474232898/weather-anomaly-monitor/internal/weather"
)

var (
	// ErrUnknownCity is returned for cities absent from the loaded dataset.
	ErrUnknownCity = errors.New("city not in dataset")
	// ErrNoDataset is returned before any dataset has been loaded.
	ErrNoDataset = errors.New("no dataset loaded")
)

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

// Fetcher is the live weather collaborator.
type Fetcher interface {
	climate.TemperatureFetcher
	FetchMany(ctx context.Context, cities []string) map[string]weather.Result
}

// Store is the contract the in-memory check history must satisfy.
type Store interface {
	SaveCheck(result CheckResult)
	GetLatest(city string) (CheckResult, error)
	GetRange(city string, from, to time.Time) ([]CheckResult, error)
}

// Service holds per-city analyses of the loaded dataset and runs live checks.
type Service struct {
	fetcher Fetcher
	store   Store
	params  Params
	log     logrus.FieldLogger

	mu       sync.RWMutex
	analyses map[string]*Analysis
	cities   []string
	loadedAt time.Time
	onLoad   []func()
}

// NewService creates a Service with no dataset loaded.
func NewService(fetcher Fetcher, store Store, params Params, log logrus.FieldLogger) (*Service, error) {
	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid analysis params: %w", err)
	}
	if params.Workers == 0 {
		params.Workers = 4
	}
	return &Service{
		fetcher:  fetcher,
		store:    store,
		params:   params,
		log:      log,
		analyses: make(map[string]*Analysis),
	}, nil
}

// Params returns the analysis settings.
func (s *Service) Params() Params {
	return s.params
}

// LoadDataset analyzes every city of ds concurrently and replaces the
// current analyses. Cities whose analysis fails are kept with their error.
func (s *Service) LoadDataset(ctx context.Context, ds *dataset.Dataset) error {
	start := time.Now()
	cities := ds.Cities()
	results := make([]Analysis, len(cities))

	var g errgroup.Group
	g.SetLimit(s.params.Workers)
	for i, city := range cities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			obs, _ := ds.Series(city)
			results[i] = AnalyzeCity(city, obs, s.params)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	analyses := make(map[string]*Analysis, len(results))
	for i := range results {
		a := &results[i]
		analyses[common.CityKey(a.City)] = a
		if a.Err != nil {
			s.log.WithField("city", a.City).WithError(a.Err).Warn("city analysis incomplete")
		}
	}

	s.mu.Lock()
	s.analyses = analyses
	s.cities = cities
	s.loadedAt = time.Now().UTC()
	hooks := s.onLoad
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"cities":       len(cities),
		"observations": ds.Len(),
		"window":       s.params.WindowSize,
		"duration":     time.Since(start),
	}).Info("dataset analyzed")

	for _, fn := range hooks {
		fn()
	}
	return nil
}

// OnLoad registers fn to run after every successful LoadDataset.
func (s *Service) OnLoad(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLoad = append(s.onLoad, fn)
}

// Cities returns the dataset's cities, sorted.
func (s *Service) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.cities))
	copy(out, s.cities)
	return out
}

// Analysis returns the analysis of city.
func (s *Service) Analysis(city string) (Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.analyses) == 0 {
		return Analysis{}, ErrNoDataset
	}
	a, ok := s.analyses[common.CityKey(city)]
	if !ok {
		return Analysis{}, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}
	return *a, nil
}

// Summary returns the summary of one city.
func (s *Service) Summary(city string) (Summary, error) {
	a, err := s.Analysis(city)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(a), nil
}

// Summaries returns a summary per city in city order.
func (s *Service) Summaries() []Summary {
	var out []Summary
	for _, city := range s.Cities() {
		if a, err := s.Analysis(city); err == nil {
			out = append(out, Summarize(a))
		}
	}
	return out
}

// Check fetches the current reading for city, classifies it against the
// city's seasonal profile and records it. Fetch errors are returned unchanged.
func (s *Service) Check(ctx context.Context, city string) (CheckResult, error) {
	result, err := s.Evaluate(ctx, city)
	if err != nil {
		return CheckResult{}, err
	}
	s.record(result)
	return result, nil
}

// Evaluate is Check without recording: the result is neither stored nor logged.
func (s *Service) Evaluate(ctx context.Context, city string) (CheckResult, error) {
	a, err := s.profiled(city)
	if err != nil {
		return CheckResult{}, err
	}

	reading, flag, err := climate.NewChecker(s.fetcher, s.params.SigmaThreshold).Check(ctx, a.City, a.Profiles)
	if err != nil {
		return CheckResult{}, err
	}
	return s.newResult(a, reading, flag), nil
}

// CheckAll checks many cities in one concurrent batch; an empty list means
// every dataset city. Per-city failures are returned alongside the results.
func (s *Service) CheckAll(ctx context.Context, cities []string) ([]CheckResult, map[string]error) {
	results, failures := s.EvaluateAll(ctx, cities)
	for _, r := range results {
		s.record(r)
	}
	return results, failures
}

// EvaluateAll is CheckAll without recording.
func (s *Service) EvaluateAll(ctx context.Context, cities []string) ([]CheckResult, map[string]error) {
	if len(cities) == 0 {
		cities = s.Cities()
	}

	failures := make(map[string]error)
	known := make(map[string]Analysis)
	var fetch []string
	for _, city := range common.UniqueCities(cities) {
		a, err := s.profiled(city)
		if err != nil {
			failures[city] = err
			continue
		}
		known[a.City] = a
		fetch = append(fetch, a.City)
	}

	var results []CheckResult
	for city, res := range s.fetcher.FetchMany(ctx, fetch) {
		if res.Err != nil {
			failures[city] = res.Err
			continue
		}
		a := known[city]
		flag, err := climate.Classify(res.Reading, a.Profiles, s.params.SigmaThreshold)
		if err != nil {
			failures[city] = err
			continue
		}
		results = append(results, s.newResult(a, res.Reading, flag))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].City < results[j].City })
	return results, failures
}

// History returns stored checks of city between from and to (inclusive).
func (s *Service) History(city string, from, to time.Time) ([]CheckResult, error) {
	a, err := s.Analysis(city)
	if err != nil {
		return nil, err
	}
	return s.store.GetRange(a.City, from, to)
}

// Latest returns the most recent stored check of city.
func (s *Service) Latest(city string) (CheckResult, error) {
	a, err := s.Analysis(city)
	if err != nil {
		return CheckResult{}, err
	}
	return s.store.GetLatest(a.City)
}

// profiled returns the analysis of city, failing when it has no profiles.
func (s *Service) profiled(city string) (Analysis, error) {
	a, err := s.Analysis(city)
	if err != nil {
		return Analysis{}, err
	}
	if a.Err != nil {
		return Analysis{}, a.Err
	}
	return a, nil
}

func (s *Service) newResult(a Analysis, reading climate.CurrentReading, flag climate.AnomalyFlag) CheckResult {
	profile := a.Profiles[climate.SeasonAt(reading.ObservedAt)]
	lower, upper := profile.Bounds(s.params.SigmaThreshold)
	return CheckResult{
		ID:        uuid.New(),
		City:      a.City,
		Reading:   reading,
		Flag:      flag,
		Profile:   profile,
		Lower:     lower,
		Upper:     upper,
		Status:    flag.Status(),
		CheckedAt: time.Now().UTC(),
	}
}

func (s *Service) record(result CheckResult) {
	s.store.SaveCheck(result)

	entry := s.log.WithFields(logrus.Fields{
		"city":        result.City,
		"temperature": fmt.Sprintf("%.1f", result.Reading.Temperature),
		"range":       fmt.Sprintf("%.1f..%.1f", result.Lower, result.Upper),
		"season":      result.Profile.Season,
		"status":      result.Status,
	})
	if result.Flag.IsAnomalous {
		entry.Warn("anomalous temperature")
	} else {
		entry.Info("temperature checked")
	}
}
