package climate

import (
	"testing"
	"time"
)

func TestSeasonOf(t *testing.T) {
	want := map[time.Month]Season{
		time.December: Winter, time.January: Winter, time.February: Winter,
		time.March: Spring, time.April: Spring, time.May: Spring,
		time.June: Summer, time.July: Summer, time.August: Summer,
		time.September: Autumn, time.October: Autumn, time.November: Autumn,
	}
	for m, s := range want {
		if got := SeasonOf(m); got != s {
			t.Errorf("%s: expected %s, got %s", m, s, got)
		}
	}
}

func TestParseSeason(t *testing.T) {
	if s, err := ParseSeason(" Fall "); err != nil || s != Autumn {
		t.Errorf("expected autumn, got %q (%v)", s, err)
	}
	if _, err := ParseSeason("monsoon"); err == nil {
		t.Error("expected error for unknown season")
	}
}

func TestRollingBands(t *testing.T) {
	obs := dailySeries("Berlin", day(2020, time.May, 1), 1, 3, 5, 5)

	bands, err := RollingBands(obs, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 4 {
		t.Fatalf("expected 4 bands, got %d", len(bands))
	}
	if bands[0].Ready {
		t.Error("first band cannot have a full window")
	}
	if !bands[1].Ready || !almostEqual(bands[1].Mean, 2) || !almostEqual(bands[1].StdDev, 1) {
		t.Errorf("unexpected band 1: %+v", bands[1])
	}
	if !almostEqual(bands[1].Lower, 0) || !almostEqual(bands[1].Upper, 4) {
		t.Errorf("unexpected envelope: %+v", bands[1])
	}
	if bands[3].StdDev != 0 || bands[3].Mean != 5 {
		t.Errorf("constant window should have zero spread: %+v", bands[3])
	}
}
