package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/hniksic/openmeteo-cli/internal/dates"
	"github.com/hniksic/openmeteo-cli/internal/forecast"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// Open-Meteo reports its hourly and current timestamps as local
	// wall-clock times without an offset.
	timeLayout = "2006-01-02T15:04"

	hourlyVars = "temperature_2m,precipitation,weather_code"
)

// Client fetches forecasts and current weather from the Open-Meteo API.
// Requests are retried with exponential backoff and guarded by a circuit
// breaker.
type Client struct {
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client using the given HTTP client.
func NewClient(httpClient *http.Client) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		baseURL: defaultBaseURL,
		client:  httpClient,
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// Forecast downloads an hourly multi-model forecast for the full 16-day
// horizon at the given coordinates. Timestamps are returned in the grid
// cell's local timezone as reported by the API.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, models []string) (*forecast.Forecast, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(lat))
		values.Set("longitude", formatCoord(lon))
		values.Set("hourly", hourlyVars)
		values.Set("models", strings.Join(models, ","))
		values.Set("forecast_days", strconv.Itoa(dates.MaxForecastDays))
		values.Set("timezone", "auto")
		return http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequest(ctx, c.client, c.circuit, c.backoff, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Latitude  float64                    `json:"latitude"`
		Longitude float64                    `json:"longitude"`
		Timezone  string                     `json:"timezone"`
		Hourly    map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("forecast response: %w", err)
	}

	loc, err := time.LoadLocation(payload.Timezone)
	if err != nil {
		return nil, fmt.Errorf("forecast timezone %q: %w", payload.Timezone, err)
	}

	var rawTimes []string
	if err := json.Unmarshal(payload.Hourly["time"], &rawTimes); err != nil {
		return nil, fmt.Errorf("forecast time axis: %w", err)
	}
	times := make([]time.Time, len(rawTimes))
	for i, s := range rawTimes {
		t, err := time.ParseInLocation(timeLayout, s, loc)
		if err != nil {
			return nil, fmt.Errorf("forecast time %q: %w", s, err)
		}
		times[i] = t
	}

	series := make([]forecast.ModelSeries, 0, len(models))
	for _, model := range models {
		temps := fieldArray[float64](payload.Hourly, fieldName("temperature_2m", model, models))
		precips := fieldArray[float64](payload.Hourly, fieldName("precipitation", model, models))
		codes := fieldArray[int](payload.Hourly, fieldName("weather_code", model, models))

		points := make([]forecast.WeatherPoint, len(times))
		for i := range points {
			points[i] = forecast.WeatherPoint{
				Temp:   at(temps, i),
				Precip: at(precips, i),
				Code:   codeAt(codes, i),
			}
		}
		series = append(series, forecast.ModelSeries{Model: model, Points: points})
	}

	return &forecast.Forecast{
		Times:    times,
		Models:   series,
		Timezone: loc,
		Location: forecast.Coord{Latitude: payload.Latitude, Longitude: payload.Longitude},
	}, nil
}

// Current downloads the current weather at the given coordinates.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*forecast.Current, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(lat))
		values.Set("longitude", formatCoord(lon))
		values.Set("current", hourlyVars)
		values.Set("timezone", "auto")
		return http.NewRequest(http.MethodGet, c.baseURL+"?"+values.Encode(), nil)
	}

	resp, err := doRequest(ctx, c.client, c.circuit, c.backoff, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("current weather request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
		Current   struct {
			Time          string   `json:"time"`
			Temperature   *float64 `json:"temperature_2m"`
			Precipitation *float64 `json:"precipitation"`
			WeatherCode   *int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("current weather response: %w", err)
	}

	loc, err := time.LoadLocation(payload.Timezone)
	if err != nil {
		return nil, fmt.Errorf("current weather timezone %q: %w", payload.Timezone, err)
	}
	t, err := time.ParseInLocation(timeLayout, payload.Current.Time, loc)
	if err != nil {
		return nil, fmt.Errorf("current weather time %q: %w", payload.Current.Time, err)
	}

	var code *forecast.WmoCode
	if payload.Current.WeatherCode != nil {
		code = forecast.Code(*payload.Current.WeatherCode)
	}
	return &forecast.Current{
		Weather: forecast.WeatherPoint{
			Temp:   payload.Current.Temperature,
			Precip: payload.Current.Precipitation,
			Code:   code,
		},
		Time:     t,
		Location: forecast.Coord{Latitude: payload.Latitude, Longitude: payload.Longitude},
	}, nil
}

// fieldName returns the hourly field key for a model. With a single
// requested model the API uses the bare variable name; with several it
// suffixes each with the model name.
func fieldName(variable, model string, models []string) string {
	if len(models) == 1 {
		return variable
	}
	return variable + "_" + model
}

// fieldArray decodes the named hourly field into a slice of optional values.
// A missing or malformed field yields nil, treated as all-absent.
func fieldArray[T any](hourly map[string]json.RawMessage, key string) []*T {
	raw, ok := hourly[key]
	if !ok {
		return nil
	}
	var vals []*T
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil
	}
	return vals
}

func at[T any](vals []*T, i int) *T {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func codeAt(vals []*int, i int) *forecast.WmoCode {
	if v := at(vals, i); v != nil {
		return forecast.Code(*v)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
