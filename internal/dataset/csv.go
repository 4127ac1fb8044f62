package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/common"
)

var (
	ErrMissingColumn      = errors.New("missing required column")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidTemperature = errors.New("invalid temperature")
	ErrInvalidDate        = errors.New("invalid date")
	ErrNoData             = errors.New("no observations found")
)

var validate = validator.New()

// Options controls CSV loading.
type Options struct {
	Delimiter rune   // default ','
	City      string // keep only this city when set
	Location  *time.Location
}

// DefaultOptions returns comma separated, UTC options.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Location: time.UTC}
}

// row is one CSV record before conversion.
type row struct {
	City        string `validate:"required"`
	Date        string `validate:"required"`
	Temperature string `validate:"required"`
}

type columns struct {
	city, date, temperature int
}

// Load reads a CSV file of observations.
func Load(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, opts)
}

// Parse reads observations from r. The header must name a city column, a
// date or timestamp column and a temperature (or temp) column; other columns
// are ignored. Any row with an empty or malformed required field fails the
// whole load.
func Parse(r io.Reader, opts Options) (*Dataset, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := findColumns(header)
	if err != nil {
		return nil, err
	}

	filter := common.CityKey(opts.City)
	var observations []climate.Observation
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		raw := row{
			City:        field(record, cols.city),
			Date:        field(record, cols.date),
			Temperature: field(record, cols.temperature),
		}
		// Every row is validated, including rows the city filter drops.
		obs, err := convert(raw, opts.Location)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if filter != "" && common.CityKey(obs.City) != filter {
			continue
		}
		observations = append(observations, obs)
	}

	if len(observations) == 0 {
		return nil, ErrNoData
	}
	return New(observations), nil
}

func convert(raw row, loc *time.Location) (climate.Observation, error) {
	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return climate.Observation{}, fmt.Errorf("%w: %s", ErrMissingField, strings.ToLower(verrs[0].Field()))
		}
		return climate.Observation{}, err
	}

	temp, err := strconv.ParseFloat(raw.Temperature, 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return climate.Observation{}, fmt.Errorf("%w: %q", ErrInvalidTemperature, raw.Temperature)
	}
	date, err := dateparse.ParseIn(raw.Date, loc)
	if err != nil {
		return climate.Observation{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, raw.Date, err)
	}

	return climate.Observation{
		City:        raw.City,
		Date:        date,
		Temperature: temp,
	}, nil
}

func findColumns(header []string) (columns, error) {
	cols := columns{city: -1, date: -1, temperature: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.Trim(h, "\"\ufeff"))) {
		case "city":
			cols.city = i
		case "date", "timestamp":
			if cols.date == -1 {
				cols.date = i
			}
		case "temperature", "temp":
			if cols.temperature == -1 {
				cols.temperature = i
			}
		}
	}

	var missing []string
	if cols.city == -1 {
		missing = append(missing, "city")
	}
	if cols.date == -1 {
		missing = append(missing, "date")
	}
	if cols.temperature == -1 {
		missing = append(missing, "temperature")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(record[idx], "\""))
}
