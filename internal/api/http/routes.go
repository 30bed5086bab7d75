package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast/internal/observability"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// probes may be nil when the probe scheduler is disabled.
func RegisterRoutes(app *fiber.App, service *weather.Service, probes *store.MemoryStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/forecastOneLocation", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(service.ForecastOne(c.UserContext(), req.Location, req.Days))
	})

	v1.Get("/weather/forecastManyLocations", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		locations := weather.ParseLocationString(req.Location)
		return c.JSON(service.ForecastMany(c.UserContext(), locations, req.Days))
	})

	v1.Get("/weather/probes", func(c *fiber.Ctx) error {
		results := []store.ProbeResult{}
		if probes != nil {
			results = probes.LatestAll()
		}
		return c.JSON(fiber.Map{
			"provider": service.ProviderName(),
			"probes":   results,
		})
	})

	v1.Get("/weather/probes/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if probes == nil {
			return fiber.NewError(fiber.StatusNotFound, "probing is disabled")
		}
		results, err := probes.History(req.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no probe history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read probe history")
		}

		return c.JSON(fiber.Map{
			"location": req.Location,
			"from":     req.From,
			"to":       req.To,
			"probes":   results,
		})
	})
}

// RegisterHealth adds /health. Status is "degraded" when the latest probe of
// any location failed.
func RegisterHealth(app *fiber.App, serviceName string, service *weather.Service, probes *store.MemoryStore) {
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		failing := []string{}
		if probes != nil {
			for _, r := range probes.LatestAll() {
				if !r.Success {
					failing = append(failing, r.Location)
				}
			}
		}
		if len(failing) > 0 {
			status = "degraded"
		}

		return c.JSON(fiber.Map{
			"status":   status,
			"service":  serviceName,
			"provider": service.ProviderName(),
			"failing":  failing,
		})
	})
}

// ErrorHandler is the centralized Fiber error response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// MetricsMiddleware records request counts and latency per matched route.
func MetricsMiddleware(m *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		route := c.Route().Path
		m.HTTPRequestsTotal.WithLabelValues(c.Method(), route, fmt.Sprintf("%dxx", status/100)).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// forecastQuery holds query parameters for both forecast endpoints.
type forecastQuery struct {
	// Location is passed through unparsed; an invalid value yields a failed envelope, not a 400.
	Location string
	Days     int `validate:"gte=1,lte=14"`
}

func (f *forecastQuery) bind(c *fiber.Ctx) error {
	f.Location = c.Query("location")
	f.Days = weather.DefaultForecastDays

	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("days must be an integer between 1 and 14")
		}
		f.Days = days
	}

	if err := validate.Struct(f); err != nil {
		return errors.New("days must be an integer between 1 and 14")
	}
	return nil
}

// historyQuery holds query parameters for the probe history endpoint.
type historyQuery struct {
	Location string    `validate:"required"`
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	coord, err := weather.ParseCoordinate(c.Query("location"))
	if err != nil {
		return err
	}
	h.Location = coord.Key()

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
