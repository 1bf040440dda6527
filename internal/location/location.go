package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"golang.org/x/time/rate"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search.php"

// userAgent identifies us to Nominatim, which rejects anonymous clients.
const userAgent = "openmeteo-cli (github.com/hniksic/openmeteo-cli)"

// Location is a resolved place: a display name plus coordinates.
type Location struct {
	DisplayName string
	Latitude    float64
	Longitude   float64
}

var coordRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// ParseCoords parses a "lat,lon" pair. ok is false when s does not look like
// a coordinate pair at all; an error is returned only for pairs that parse
// but fall outside the valid ranges.
func ParseCoords(s string) (lat, lon float64, ok bool, err error) {
	m := coordRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false, nil
	}
	lat, err = strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, true, err
	}
	lon, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, true, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, true, errors.New("latitude must be between -90 and 90, longitude between -180 and 180")
	}
	return lat, lon, true, nil
}

// Resolver turns a user-supplied location string into coordinates, geocoding
// place names through Nominatim. Geocoding calls are rate limited to one per
// second per the Nominatim usage policy.
type Resolver struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewResolver creates a Resolver using the given HTTP client.
func NewResolver(client *http.Client) *Resolver {
	return &Resolver{
		client:  client,
		limiter: rate.NewLimiter(1, 1),
		baseURL: nominatimURL,
	}
}

// Resolve parses s as a "lat,lon" pair, or geocodes it as a place name.
func (r *Resolver) Resolve(ctx context.Context, s string) (Location, error) {
	if lat, lon, ok, err := ParseCoords(s); ok {
		if err != nil {
			return Location{}, err
		}
		return Location{DisplayName: s, Latitude: lat, Longitude: lon}, nil
	}
	return r.geocode(ctx, s)
}

func (r *Resolver) geocode(ctx context.Context, query string) (Location, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Location{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "jsonv2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocoding API error: %s", resp.Status)
	}

	var results []struct {
		DisplayName string `json:"display_name"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Location{}, fmt.Errorf("geocoding response: %w", err)
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("unknown location %q", query)
	}

	first := results[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocoding longitude: %w", err)
	}
	return Location{DisplayName: first.DisplayName, Latitude: lat, Longitude: lon}, nil
}
