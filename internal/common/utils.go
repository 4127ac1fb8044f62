package common

import "strings"

// CityKey returns the canonical lookup key for a city name: trimmed and
// case-folded, with inner whitespace collapsed.
func CityKey(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

// UniqueCities drops empty and duplicate (by CityKey) names, keeping the
// first spelling and input order.
func UniqueCities(cities []string) []string {
	seen := make(map[string]struct{}, len(cities))
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		key := CityKey(c)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(c))
	}
	return out
}
