package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/hniksic/openmeteo-cli/internal/api/http"
	"github.com/hniksic/openmeteo-cli/internal/config"
	"github.com/hniksic/openmeteo-cli/internal/dates"
	"github.com/hniksic/openmeteo-cli/internal/location"
	"github.com/hniksic/openmeteo-cli/internal/openmeteo"
	"github.com/hniksic/openmeteo-cli/internal/render"
	"github.com/hniksic/openmeteo-cli/internal/scheduler"
	"github.com/hniksic/openmeteo-cli/internal/store"
)

func usage() {
	fmt.Fprint(os.Stderr, `Fetch weather data from Open-Meteo.

Usage:
  openmeteo forecast LOCATION [DATE_RANGE] [flags]
  openmeteo current LOCATION [flags]
  openmeteo serve

LOCATION is a place name or a lat,lon pair. DATE_RANGE is YYYY-MM-DD, +N,
'today', 'tomorrow', a weekday name, or date1..date2 (default "today").

Forecast flags:
  --models LIST   comma-separated forecast models (default "`+strings.Join(config.DefaultModels, ",")+`")
  --full          show hourly data for all days (default: 3-hour buckets for future days)
  --json          output raw JSON instead of a formatted table
  -v, --verbose   verbose output

Current flags:
  --json          output raw JSON instead of a formatted table
  -v, --verbose   verbose output

Serve mode reads PORT, FETCH_INTERVAL, TRACK_LOCATIONS, MODELS,
STORE_MAX_HISTORY and STORE_MAX_AGE from the environment or a .env file.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "forecast":
		err = runForecast(os.Args[2:])
	case "current":
		err = runCurrent(os.Args[2:])
	case "serve":
		err = runServe()
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "openmeteo: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "openmeteo: %v\n", err)
		os.Exit(1)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func runForecast(args []string) error {
	fs := flag.NewFlagSet("forecast", flag.ExitOnError)
	models := fs.String("models", strings.Join(config.DefaultModels, ","), "comma-separated list of forecast models")
	full := fs.Bool("full", false, "show hourly data for all days")
	jsonOut := fs.Bool("json", false, "output raw JSON instead of a formatted table")
	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "verbose output")
	fs.BoolVar(&verbose, "v", false, "verbose output (shorthand)")
	fs.Parse(args)

	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("usage: openmeteo forecast LOCATION [DATE_RANGE]")
	}
	datesArg := "today"
	if fs.NArg() == 2 {
		datesArg = fs.Arg(1)
	}

	dateRange, err := dates.ParseRange(datesArg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	httpClient := newHTTPClient()

	loc, err := location.NewResolver(httpClient).Resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	f, err := openmeteo.NewClient(httpClient).Forecast(ctx, loc.Latitude, loc.Longitude, strings.Split(*models, ","))
	if err != nil {
		return err
	}

	now := time.Now().In(f.Timezone)
	start, end := dates.ResolveTimeRange(dateRange, f.Timezone, now)

	if *jsonOut {
		return render.WriteForecastJSON(os.Stdout, f, start, end)
	}

	fmt.Printf("Forecast for %s\n", loc.DisplayName)
	if verbose {
		fmt.Printf("Grid-cell location: %s\n", f.Location.MapLink())
		fmt.Printf("Timezone: %s\n", f.Timezone)
		fmt.Printf("Interval: [%s, %s)\n", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if !*full {
		f.Compact(dates.DateOf(now))
	}
	render.ForecastTable(f, start, end).Print()
	return nil
}

func runCurrent(args []string) error {
	fs := flag.NewFlagSet("current", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "output raw JSON instead of a formatted table")
	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "verbose output")
	fs.BoolVar(&verbose, "v", false, "verbose output (shorthand)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: openmeteo current LOCATION")
	}

	ctx := context.Background()
	httpClient := newHTTPClient()

	loc, err := location.NewResolver(httpClient).Resolve(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	cur, err := openmeteo.NewClient(httpClient).Current(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return err
	}

	if *jsonOut {
		return render.WriteCurrentJSON(os.Stdout, cur)
	}

	fmt.Printf("Current weather for %s\n", loc.DisplayName)
	if verbose {
		fmt.Printf("Grid-cell location: %s\n", cur.Location.MapLink())
	}
	render.CurrentTable(cur).Print()
	return nil
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	httpClient := newHTTPClient()
	client := openmeteo.NewClient(httpClient)
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	sched := scheduler.New(cfg.Locations, cfg.Models, cfg.FetchInterval, client, memStore)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "openmeteo-cli",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "openmeteo-cli",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Client: client,
		Store:  memStore,
		Models: cfg.Models,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
