package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-anomaly-monitor/internal/common"
	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

var (
	// ErrNotFound is returned when no checks are recorded for a given city.
	ErrNotFound = errors.New("no checks recorded for city")
)

// checkHistory holds the checks of one city, ordered by CheckedAt.
type checkHistory struct {
	checks []monitor.CheckResult
}

// MemoryStore is a concurrency-safe in-memory history of live checks.
type MemoryStore struct {
	mu sync.RWMutex

	// key: common.CityKey
	data map[string]*checkHistory

	maxHistory int           // max checks per city
	maxAge     time.Duration // optional max age of a check
}

var _ monitor.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*checkHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveCheck appends a check for its city and enforces retention.
func (s *MemoryStore) SaveCheck(result monitor.CheckResult) {
	key := common.CityKey(result.City)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &checkHistory{}
		s.data[key] = history
	}

	// Keep CheckedAt order even if a result arrives late.
	i := len(history.checks)
	for i > 0 && history.checks[i-1].CheckedAt.After(result.CheckedAt) {
		i--
	}
	history.checks = append(history.checks, monitor.CheckResult{})
	copy(history.checks[i+1:], history.checks[i:])
	history.checks[i] = result

	if s.maxHistory > 0 && len(history.checks) > s.maxHistory {
		over := len(history.checks) - s.maxHistory
		history.checks = history.checks[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.checks); i++ {
			if !history.checks[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		history.checks = history.checks[i:]
	}

	if len(history.checks) == 0 {
		delete(s.data, key)
	}
}

// GetLatest returns the most recent check for a city.
func (s *MemoryStore) GetLatest(city string) (monitor.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[common.CityKey(city)]
	if !ok || len(history.checks) == 0 {
		return monitor.CheckResult{}, ErrNotFound
	}
	return history.checks[len(history.checks)-1], nil
}

// GetRange returns all checks for a city between from and to (inclusive).
func (s *MemoryStore) GetRange(city string, from, to time.Time) ([]monitor.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[common.CityKey(city)]
	if !ok || len(history.checks) == 0 {
		return nil, ErrNotFound
	}

	var result []monitor.CheckResult
	for _, c := range history.checks {
		if !c.CheckedAt.Before(from) && !c.CheckedAt.After(to) {
			result = append(result, c)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Cities returns the number of cities with recorded checks.
func (s *MemoryStore) Cities() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
