package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("city,date,temperature\n")
	for i := 1; i <= 40; i++ {
		d := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i-1)
		fmt.Fprintf(&b, "Oslo,%s,%d\n", d.Format("2006-01-02"), -5+i%3)
		fmt.Fprintf(&b, "Bergen,%s,%d\n", d.Format("2006-01-02"), 2+i%2)
	}
	path := filepath.Join(dir, "history.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeCSV(t, t.TempDir())
	out, err := run(t, "analyze", path, "--window", "5", "--sigma", "1.5", "--format", "json")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}

	var report analysisReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.WindowSize != 5 || report.SigmaThreshold != 1.5 {
		t.Fatalf("flag overrides not applied: %+v", report)
	}
	if len(report.Cities) != 2 || report.Cities[0].City != "Bergen" || report.Cities[1].Observations != 40 {
		t.Fatalf("unexpected cities %+v", report.Cities)
	}
	if len(report.Cities[1].Profiles) != 1 || report.Cities[1].Profiles[0].Season != climate.Winter {
		t.Fatalf("expected a single winter profile, got %+v", report.Cities[1].Profiles)
	}
}

func TestAnalyzeCityFilterYAML(t *testing.T) {
	path := writeCSV(t, t.TempDir())
	out, err := run(t, "analyze", path, "--city", "oslo", "--window", "5", "--format", "yaml")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}

	var report analysisReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(report.Cities) != 1 || report.Cities[0].City != "Oslo" {
		t.Fatalf("unexpected cities %+v", report.Cities)
	}
}

func TestAnalyzeTable(t *testing.T) {
	path := writeCSV(t, t.TempDir())
	out, err := run(t, "analyze", path, "--window", "5")
	if err != nil {
		t.Fatalf("analyze: %v\n%s", err, out)
	}
	for _, want := range []string{"CITY", "Oslo", "winter"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	path := writeCSV(t, t.TempDir())
	if _, err := run(t, "analyze", path, "--format", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := run(t, "analyze", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := run(t, "analyze"); err == nil {
		t.Fatal("expected error without a file argument")
	}
}

func TestCheckRequiresDataset(t *testing.T) {
	t.Setenv("DATA_PATH", "")
	_, err := run(t, "check", "Oslo")
	if err == nil || !strings.Contains(err.Error(), "no dataset") {
		t.Fatalf("expected missing dataset error, got %v", err)
	}
}

func TestRenderChecks(t *testing.T) {
	var buf bytes.Buffer
	results := []monitor.CheckResult{{
		City:    "Oslo",
		Reading: climate.CurrentReading{Temperature: 8, Sources: []string{"openmeteo"}},
		Profile: climate.SeriesProfile{Season: climate.Winter},
		Lower:   -7,
		Upper:   -3,
		Status:  climate.StatusWarmer,
	}}
	renderChecks(&buf, results, map[string]error{"Paris": monitor.ErrUnknownCity})

	out := buf.String()
	for _, want := range []string{"Oslo", "-7.0 .. -3.0", string(climate.StatusWarmer), "Paris: " + monitor.ErrUnknownCity.Error()} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
