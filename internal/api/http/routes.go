package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hniksic/openmeteo-cli/internal/dates"
	"github.com/hniksic/openmeteo-cli/internal/forecast"
	"github.com/hniksic/openmeteo-cli/internal/render"
	"github.com/hniksic/openmeteo-cli/internal/store"
)

var validate = validator.New()

// WeatherAPI is the subset of the Open-Meteo client the routes need.
type WeatherAPI interface {
	Forecast(ctx context.Context, lat, lon float64, models []string) (*forecast.Forecast, error)
	Current(ctx context.Context, lat, lon float64) (*forecast.Current, error)
}

// Deps bundles the collaborators the HTTP handlers use.
type Deps struct {
	Client WeatherAPI
	Store  *store.MemoryStore
	Models []string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		coords, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dateRange, err := dates.ParseRange(c.Query("dates", "today"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		models := deps.Models
		if q := c.Query("models"); q != "" {
			models = splitModels(q)
		}
		full := c.QueryBool("full")

		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()

		f, err := deps.Client.Forecast(ctx, coords.Lat, coords.Lon, models)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch forecast data")
		}

		now := time.Now().In(f.Timezone)
		start, end := dates.ResolveTimeRange(dateRange, f.Timezone, now)
		if !full {
			f.Compact(dates.DateOf(now))
		}

		return c.JSON(fiber.Map{
			"location": f.Location,
			"timezone": f.Timezone.String(),
			"interval": fiber.Map{"start": start, "end": end},
			"points":   render.ForecastPoints(f, start, end),
		})
	})

	v1.Get("/current", func(c *fiber.Ctx) error {
		coords, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()

		cur, err := deps.Client.Current(ctx, coords.Lat, coords.Lon)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch current weather")
		}

		point, ok := render.CurrentPoint(cur)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "current weather has no data")
		}
		return c.JSON(point)
	})

	v1.Get("/snapshots", func(c *fiber.Ctx) error {
		coords, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snaps, err := deps.Store.History(coords.Lat, coords.Lon)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no snapshots for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read snapshots")
		}

		summaries := make([]fiber.Map, 0, len(snaps))
		for _, snap := range snaps {
			models := make([]string, 0, len(snap.Forecast.Models))
			for _, m := range snap.Forecast.Models {
				models = append(models, m.Model)
			}
			summaries = append(summaries, fiber.Map{
				"fetched_at": snap.FetchedAt,
				"timezone":   snap.Forecast.Timezone.String(),
				"hours":      len(snap.Forecast.Times),
				"models":     models,
			})
		}
		return c.JSON(fiber.Map{
			"location":  fiber.Map{"latitude": coords.Lat, "longitude": coords.Lon},
			"snapshots": summaries,
		})
	})
}

// coordQuery holds the coordinate query parameters shared by all endpoints.
type coordQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordQuery(c *fiber.Ctx) (coordQuery, error) {
	var q coordQuery

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return q, errors.New("lat must be a number")
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return q, errors.New("lon must be a number")
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func splitModels(s string) []string {
	var models []string
	for _, m := range strings.Split(s, ",") {
		if m != "" {
			models = append(models, m)
		}
	}
	return models
}
