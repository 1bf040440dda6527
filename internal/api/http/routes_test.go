package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hniksic/openmeteo-cli/internal/forecast"
	"github.com/hniksic/openmeteo-cli/internal/render"
	"github.com/hniksic/openmeteo-cli/internal/store"
)

// stubClient serves canned data and records what it was asked for.
type stubClient struct {
	forecast  *forecast.Forecast
	current   *forecast.Current
	err       error
	gotModels []string
	gotLat    float64
	gotLon    float64
}

func (s *stubClient) Forecast(ctx context.Context, lat, lon float64, models []string) (*forecast.Forecast, error) {
	s.gotLat, s.gotLon, s.gotModels = lat, lon, models
	if s.err != nil {
		return nil, s.err
	}
	return s.forecast, nil
}

func (s *stubClient) Current(ctx context.Context, lat, lon float64) (*forecast.Current, error) {
	s.gotLat, s.gotLon = lat, lon
	if s.err != nil {
		return nil, s.err
	}
	return s.current, nil
}

// tomorrowNoon is stable against the evening cutoff, unlike "today".
func tomorrowNoon() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 12, 0, 0, 0, time.UTC)
}

func stubForecast() *forecast.Forecast {
	return &forecast.Forecast{
		Times: []time.Time{tomorrowNoon()},
		Models: []forecast.ModelSeries{{
			Model: "ecmwf_ifs",
			Points: []forecast.WeatherPoint{{
				Temp:   forecast.Float(5),
				Precip: forecast.Float(0),
				Code:   forecast.Code(3),
			}},
		}},
		Timezone: time.UTC,
		Location: forecast.Coord{Latitude: 46.05, Longitude: 14.51},
	}
}

func testApp(client *stubClient, st *store.MemoryStore) *fiber.App {
	if st == nil {
		st = store.NewMemoryStore(0, 0)
	}
	app := fiber.New()
	RegisterRoutes(app, Deps{Client: client, Store: st, Models: []string{"ecmwf_ifs"}})
	return app
}

func get(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestForecastEndpoint(t *testing.T) {
	client := &stubClient{forecast: stubForecast()}
	app := testApp(client, nil)

	resp := get(t, app, "/api/v1/forecast?lat=46.05&lon=14.51&dates=%2B1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Timezone string         `json:"timezone"`
		Points   []render.Point `json:"points"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Timezone != "UTC" {
		t.Errorf("timezone = %q, want UTC", body.Timezone)
	}
	if len(body.Points) != 1 {
		t.Fatalf("got %d points, want 1", len(body.Points))
	}
	if body.Points[0].Model != "ecmwf_ifs" || body.Points[0].Temperature != 5 {
		t.Errorf("unexpected point %+v", body.Points[0])
	}

	if client.gotLat != 46.05 || client.gotLon != 14.51 {
		t.Errorf("client called with %v, %v", client.gotLat, client.gotLon)
	}
	if len(client.gotModels) != 1 || client.gotModels[0] != "ecmwf_ifs" {
		t.Errorf("client called with models %v", client.gotModels)
	}
}

func TestForecastModelsOverride(t *testing.T) {
	client := &stubClient{forecast: stubForecast()}
	app := testApp(client, nil)

	resp := get(t, app, "/api/v1/forecast?lat=46.05&lon=14.51&models=icon_seamless,gfs_global")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	want := []string{"icon_seamless", "gfs_global"}
	if len(client.gotModels) != 2 || client.gotModels[0] != want[0] || client.gotModels[1] != want[1] {
		t.Errorf("client called with models %v, want %v", client.gotModels, want)
	}
}

func TestForecastValidation(t *testing.T) {
	app := testApp(&stubClient{forecast: stubForecast()}, nil)

	cases := []struct {
		name   string
		target string
	}{
		{"missing lat", "/api/v1/forecast?lon=14.51"},
		{"non-numeric lat", "/api/v1/forecast?lat=abc&lon=14.51"},
		{"lat out of range", "/api/v1/forecast?lat=95&lon=14.51"},
		{"lon out of range", "/api/v1/forecast?lat=46&lon=200"},
		{"bad dates", "/api/v1/forecast?lat=46&lon=14&dates=someday"},
	}
	for _, c := range cases {
		if resp := get(t, app, c.target); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", c.name, resp.StatusCode)
		}
	}
}

func TestForecastUpstreamFailure(t *testing.T) {
	app := testApp(&stubClient{err: errors.New("boom")}, nil)
	resp := get(t, app, "/api/v1/forecast?lat=46&lon=14")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestCurrentEndpoint(t *testing.T) {
	client := &stubClient{current: &forecast.Current{
		Weather: forecast.WeatherPoint{
			Temp:   forecast.Float(4.5),
			Precip: forecast.Float(0),
			Code:   forecast.Code(61),
		},
		Time:     time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
		Location: forecast.Coord{Latitude: 46.05, Longitude: 14.51},
	}}
	app := testApp(client, nil)

	resp := get(t, app, "/api/v1/current?lat=46.05&lon=14.51")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var point render.Point
	if err := json.NewDecoder(resp.Body).Decode(&point); err != nil {
		t.Fatal(err)
	}
	if point.Temperature != 4.5 || point.WeatherCode != 61 {
		t.Errorf("unexpected point %+v", point)
	}
}

func TestCurrentNoData(t *testing.T) {
	// An observation with absent fields has nothing to report.
	client := &stubClient{current: &forecast.Current{
		Time: time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
	}}
	app := testApp(client, nil)

	resp := get(t, app, "/api/v1/current?lat=46.05&lon=14.51")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSnapshotsEndpoint(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	app := testApp(&stubClient{}, st)

	resp := get(t, app, "/api/v1/snapshots?lat=46.05&lon=14.51")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status before any save = %d, want 404", resp.StatusCode)
	}

	st.Save(46.05, 14.51, store.Snapshot{
		FetchedAt: time.Now().UTC(),
		Forecast:  stubForecast(),
	})

	resp = get(t, app, "/api/v1/snapshots?lat=46.05&lon=14.51")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Snapshots []struct {
			Hours  int      `json:"hours"`
			Models []string `json:"models"`
		} `json:"snapshots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(body.Snapshots))
	}
	if body.Snapshots[0].Hours != 1 || len(body.Snapshots[0].Models) != 1 {
		t.Errorf("unexpected snapshot summary %+v", body.Snapshots[0])
	}
}
