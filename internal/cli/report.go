package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(f string) bool {
	return f == formatTable || f == formatJSON || f == formatYAML
}

type analysisReport struct {
	WindowSize     int               `json:"windowSize" yaml:"windowSize"`
	SigmaThreshold float64           `json:"sigmaThreshold" yaml:"sigmaThreshold"`
	Cities         []monitor.Summary `json:"cities" yaml:"cities"`
}

func renderSummaries(w io.Writer, summaries []monitor.Summary, params monitor.Params, format string) error {
	report := analysisReport{WindowSize: params.WindowSize, SigmaThreshold: params.SigmaThreshold, Cities: summaries}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"City", "Obs", "From", "To", "Mean", "StdDev", "Min", "Max", "Anomalies", "Trend °C/yr", "Error"})
	for _, s := range summaries {
		trend := "-"
		if s.TrendPerYear != nil {
			trend = fmt.Sprintf("%+.3f (R² %.3f, p %.3f)", *s.TrendPerYear, *s.RSquared, *s.TrendPValue)
		}
		table.Append([]string{
			s.City,
			strconv.Itoa(s.Observations),
			day(s.From),
			day(s.To),
			celsius(s.Mean),
			celsius(s.StdDev),
			celsius(s.Min),
			celsius(s.Max),
			fmt.Sprintf("%d (%.1f%%)", s.Anomalies, s.AnomalyPct),
			trend,
			s.Error,
		})
	}
	table.Render()

	fmt.Fprintf(w, "\nSeasonal profiles (window %d, ±%.1fσ)\n", params.WindowSize, params.SigmaThreshold)
	profiles := tablewriter.NewWriter(w)
	profiles.SetHeader([]string{"City", "Season", "Mean", "StdDev", "Lower", "Upper", "Samples"})
	for _, s := range summaries {
		for _, p := range s.Profiles {
			lower, upper := p.Bounds(params.SigmaThreshold)
			profiles.Append([]string{
				s.City,
				string(p.Season),
				celsius(p.Mean),
				celsius(p.StdDev),
				celsius(lower),
				celsius(upper),
				strconv.Itoa(p.Samples),
			})
		}
	}
	profiles.Render()
	return nil
}

func renderChecks(w io.Writer, results []monitor.CheckResult, failures map[string]error) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"City", "Now °C", "Normal range", "Season", "Status", "Sources"})
	for _, r := range results {
		table.Append([]string{
			r.City,
			celsius(r.Reading.Temperature),
			fmt.Sprintf("%s .. %s", celsius(r.Lower), celsius(r.Upper)),
			string(r.Profile.Season),
			string(r.Status),
			fmt.Sprint(r.Reading.Sources),
		})
	}
	table.Render()

	if len(failures) == 0 {
		return
	}
	cities := make([]string, 0, len(failures))
	for city := range failures {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	fmt.Fprintln(w, "\nFailed:")
	for _, city := range cities {
		fmt.Fprintf(w, "  %s: %v\n", city, failures[city])
	}
}

func celsius(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
