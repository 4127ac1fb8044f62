package climate

import (
	"fmt"
	"strings"
	"time"
)

// Season is a calendar season bucket.
//
// The month mapping is fixed to the Northern Hemisphere for every city:
// Dec-Feb winter, Mar-May spring, Jun-Aug summer, Sep-Nov autumn.
type Season string

const (
	Winter Season = "winter"
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
)

// Seasons returns all seasons in calendar order starting with winter.
func Seasons() []Season {
	return []Season{Winter, Spring, Summer, Autumn}
}

// SeasonOf returns the season bucket for a calendar month. The mapping is the
// Northern-Hemisphere one for every city.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Autumn
	}
}

// SeasonAt returns the season of the given instant, using its own location.
func SeasonAt(t time.Time) Season {
	return SeasonOf(t.Month())
}

// ParseSeason parses a season name, case-insensitively.
func ParseSeason(s string) (Season, error) {
	switch Season(strings.ToLower(strings.TrimSpace(s))) {
	case Winter:
		return Winter, nil
	case Spring:
		return Spring, nil
	case Summer:
		return Summer, nil
	case Autumn, "fall":
		return Autumn, nil
	}
	return "", fmt.Errorf("unknown season %q", s)
}
