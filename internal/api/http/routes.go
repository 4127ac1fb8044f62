package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-anomaly-monitor/internal/climate"
	"github.com/i474232898/weather-anomaly-monitor/internal/dataset"
	"github.com/i474232898/weather-anomaly-monitor/internal/monitor"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *monitor.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"cities": service.Cities()})
	})

	v1.Post("/dataset", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart field \"file\" is required")
		}
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer f.Close()

		ds, err := dataset.Parse(f, dataset.DefaultOptions())
		if err != nil {
			return toHTTPError(err)
		}
		if err := service.LoadDataset(c.UserContext(), ds); err != nil {
			return toHTTPError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"cities":       ds.Cities(),
			"observations": ds.Len(),
		})
	})

	city := v1.Group("/cities/:city")

	city.Get("/summary", func(c *fiber.Ctx) error {
		summary, err := service.Summary(c.Params("city"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(summary)
	})

	city.Get("/profile", func(c *fiber.Ctx) error {
		a, err := profiledAnalysis(service, c.Params("city"))
		if err != nil {
			return toHTTPError(err)
		}
		sigma := service.Params().SigmaThreshold
		var profiles []profileResponse
		for _, season := range climate.Seasons() {
			p, ok := a.Profiles[season]
			if !ok {
				continue
			}
			lower, upper := p.Bounds(sigma)
			profiles = append(profiles, profileResponse{SeriesProfile: p, Lower: lower, Upper: upper})
		}
		return c.JSON(fiber.Map{
			"city":     a.City,
			"sigma":    sigma,
			"profiles": profiles,
		})
	})

	city.Get("/anomalies", func(c *fiber.Ctx) error {
		var q anomaliesQuery
		if err := q.bind(c, service.Params().SigmaThreshold); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		a, err := profiledAnalysis(service, c.Params("city"))
		if err != nil {
			return toHTTPError(err)
		}

		flags := a.Flags
		if q.Sigma != service.Params().SigmaThreshold {
			flags, err = climate.DetectAnomalies(a.Observations, a.Profiles, q.Sigma)
			if err != nil {
				return toHTTPError(err)
			}
		}

		out := make([]flagResponse, 0, len(flags))
		for _, f := range flags {
			if q.Only && !f.IsAnomalous {
				continue
			}
			out = append(out, newFlagResponse(f))
		}
		return c.JSON(fiber.Map{
			"city":      a.City,
			"sigma":     q.Sigma,
			"total":     len(flags),
			"anomalies": climate.CountAnomalies(flags),
			"flags":     out,
		})
	})

	city.Get("/trend", func(c *fiber.Ctx) error {
		a, err := service.Analysis(c.Params("city"))
		if err != nil {
			return toHTTPError(err)
		}
		if a.Trend == nil {
			return toHTTPError(fmt.Errorf("%w: trend of %s", climate.ErrInsufficientData, a.City))
		}
		return c.JSON(trendResponse{Trend: *a.Trend, PerYear: a.Trend.PerYear()})
	})

	city.Get("/rolling", func(c *fiber.Ctx) error {
		a, err := service.Analysis(c.Params("city"))
		if err != nil {
			return toHTTPError(err)
		}
		if a.Bands == nil {
			return toHTTPError(fmt.Errorf("%w: rolling bands of %s", climate.ErrInsufficientData, a.City))
		}
		return c.JSON(fiber.Map{
			"city":   a.City,
			"window": service.Params().WindowSize,
			"sigma":  service.Params().SigmaThreshold,
			"bands":  a.Bands,
		})
	})

	city.Get("/current", func(c *fiber.Ctx) error {
		result, err := service.Check(c.UserContext(), c.Params("city"))
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(newCheckResponse(result))
	})

	city.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		checks, err := service.History(c.Params("city"), req.From, req.To)
		if err != nil {
			return toHTTPError(err)
		}

		out := make([]checkResponse, 0, len(checks))
		for _, r := range checks {
			out = append(out, newCheckResponse(r))
		}
		return c.JSON(fiber.Map{
			"city":   c.Params("city"),
			"from":   req.From,
			"to":     req.To,
			"checks": out,
		})
	})
}

// profiledAnalysis returns the analysis of city, failing when profiling did.
func profiledAnalysis(service *monitor.Service, city string) (monitor.Analysis, error) {
	a, err := service.Analysis(city)
	if err != nil {
		return monitor.Analysis{}, err
	}
	if a.Err != nil {
		return monitor.Analysis{}, a.Err
	}
	return a, nil
}

// anomaliesQuery holds query parameters for the anomalies endpoint.
type anomaliesQuery struct {
	Sigma float64 `validate:"gte=0"`
	Only  bool
}

func (q *anomaliesQuery) bind(c *fiber.Ctx, defaultSigma float64) error {
	q.Sigma = defaultSigma
	if s := c.Query("sigma"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("sigma must be a number")
		}
		q.Sigma = v
	}
	if s := c.Query("only"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return errors.New("only must be a boolean")
		}
		q.Only = v
	}
	return validate.Struct(q)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
