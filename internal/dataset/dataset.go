// Package dataset loads historical temperature observations from CSV files.
package dataset

import (
	"sort"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/common"
)

// Dataset holds observations grouped by city, each series sorted by date.
type Dataset struct {
	names  map[string]string
	series map[string][]climate.Observation
}

// New builds a Dataset from observations in any order.
func New(observations []climate.Observation) *Dataset {
	d := &Dataset{
		names:  make(map[string]string),
		series: make(map[string][]climate.Observation),
	}
	for _, o := range observations {
		key := common.CityKey(o.City)
		if _, ok := d.names[key]; !ok {
			d.names[key] = o.City
		}
		o.City = d.names[key]
		d.series[key] = append(d.series[key], o)
	}
	for _, s := range d.series {
		sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
	}
	return d
}

// Cities returns the display names of all cities, sorted.
func (d *Dataset) Cities() []string {
	cities := make([]string, 0, len(d.names))
	for _, name := range d.names {
		cities = append(cities, name)
	}
	sort.Strings(cities)
	return cities
}

// Series returns a copy of the city's observations sorted by date.
// City lookup ignores case and surrounding spaces.
func (d *Dataset) Series(city string) ([]climate.Observation, bool) {
	s, ok := d.series[common.CityKey(city)]
	if !ok {
		return nil, false
	}
	out := make([]climate.Observation, len(s))
	copy(out, s)
	return out, true
}

// Len returns the total number of observations.
func (d *Dataset) Len() int {
	n := 0
	for _, s := range d.series {
		n += len(s)
	}
	return n
}
