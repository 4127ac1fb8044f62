package weather

import (
	"sync"
	"time"

	"github.com/i474232898/weather-anomaly-monitor/internal/common"
)

type cityEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// CityCache holds per-city values (geocodes, readings) for a fixed TTL.
// Keys are canonicalized with common.CityKey; expired entries are evicted on
// lookup.
type CityCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cityEntry[V]
}

// NewCityCache creates a cache with the given TTL. A nil now uses time.Now.
func NewCityCache[V any](ttl time.Duration, now func() time.Time) *CityCache[V] {
	if now == nil {
		now = time.Now
	}
	return &CityCache[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cityEntry[V]),
	}
}

func (c *CityCache[V]) Get(city string) (V, bool) {
	key := common.CityKey(city)

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *CityCache[V]) Set(city string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[common.CityKey(city)] = cityEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Len returns the number of entries, expired ones included until looked up.
func (c *CityCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
