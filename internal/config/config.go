package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hniksic/openmeteo-cli/internal/location"
)

// DefaultModels are the forecast models requested when none are configured.
var DefaultModels = []string{"ecmwf_ifs", "gfs_graphcast025"}

// TrackedLocation is a coordinate the serve-mode scheduler keeps refreshed.
type TrackedLocation struct {
	Latitude  float64
	Longitude float64
}

// AppConfig holds serve-mode configuration.
type AppConfig struct {
	Port string

	// FetchInterval controls how often tracked locations are refreshed.
	FetchInterval time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max snapshot age (0 = unlimited)

	// Models requested from Open-Meteo.
	Models []string

	// Locations the scheduler keeps refreshed.
	Locations []TrackedLocation
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is honored if present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	intervalStr := getenvDefault("FETCH_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 24)

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.Models = DefaultModels
	if models := os.Getenv("MODELS"); models != "" {
		cfg.Models = strings.Split(models, ",")
	}

	locs, err := loadTrackedLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	return cfg, nil
}

// loadTrackedLocations parses TRACK_LOCATIONS, a semicolon-separated list of
// "lat,lon" pairs.
func loadTrackedLocations() ([]TrackedLocation, error) {
	raw := os.Getenv("TRACK_LOCATIONS")
	if raw == "" {
		return nil, nil
	}
	var locs []TrackedLocation
	for _, pair := range strings.Split(raw, ";") {
		lat, lon, ok, err := location.ParseCoords(pair)
		if !ok {
			return nil, fmt.Errorf("invalid TRACK_LOCATIONS entry %q: want lat,lon", pair)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid TRACK_LOCATIONS entry %q: %w", pair, err)
		}
		locs = append(locs, TrackedLocation{Latitude: lat, Longitude: lon})
	}
	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
