package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

func check(city string, at time.Time) monitor.CheckResult {
	return monitor.CheckResult{City: city, CheckedAt: at}
}

func TestGetLatestUsesCityKey(t *testing.T) {
	s := NewMemoryStore(0, 0)
	now := time.Now()
	s.SaveCheck(check("New York", now.Add(-time.Minute)))
	s.SaveCheck(check("new  york", now))

	got, err := s.GetLatest("NEW YORK")
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if !got.CheckedAt.Equal(now) {
		t.Fatalf("expected latest check, got %v", got.CheckedAt)
	}
	if s.Cities() != 1 {
		t.Fatalf("expected one city, got %d", s.Cities())
	}
}

func TestGetLatestNotFound(t *testing.T) {
	s := NewMemoryStore(0, 0)
	if _, err := s.GetLatest("Oslo"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOutOfOrderSaveKeepsOrder(t *testing.T) {
	s := NewMemoryStore(0, 0)
	now := time.Now()
	s.SaveCheck(check("Oslo", now))
	s.SaveCheck(check("Oslo", now.Add(-time.Hour)))

	got, err := s.GetLatest("Oslo")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CheckedAt.Equal(now) {
		t.Fatalf("late arrival must not become latest")
	}
}

func TestMaxHistory(t *testing.T) {
	s := NewMemoryStore(2, 0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		s.SaveCheck(check("Oslo", now.Add(time.Duration(i)*time.Second)))
	}
	got, err := s.GetRange("Oslo", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 retained checks, got %d", len(got))
	}
	if !got[0].CheckedAt.Equal(now.Add(3 * time.Second)) {
		t.Fatalf("oldest checks should be dropped first")
	}
}

func TestMaxAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	now := time.Now()
	s.SaveCheck(check("Oslo", now.Add(-3*time.Hour)))
	s.SaveCheck(check("Oslo", now.Add(-2*time.Hour)))
	s.SaveCheck(check("Oslo", now))

	got, err := s.GetRange("Oslo", now.Add(-24*time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only the fresh check, got %d", len(got))
	}

	s.SaveCheck(check("Bergen", now.Add(-2*time.Hour)))
	if _, err := s.GetLatest("Bergen"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired-only history should be gone, got %v", err)
	}
}

func TestGetRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		s.SaveCheck(check("Oslo", base.Add(time.Duration(i)*time.Hour)))
	}

	got, err := s.GetRange("Oslo", base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("range is inclusive on both ends, got %d", len(got))
	}

	if _, err := s.GetRange("Oslo", base.Add(10*time.Hour), base.Add(11*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty range, got %v", err)
	}
}

func TestConcurrentSave(t *testing.T) {
	s := NewMemoryStore(0, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.SaveCheck(check("Oslo", time.Now()))
			_, _ = s.GetLatest("Oslo")
		}()
	}
	wg.Wait()

	got, err := s.GetRange("Oslo", time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 50 {
		t.Fatalf("expected 50 checks, got %d", len(got))
	}
}
