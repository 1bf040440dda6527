package forecast

import (
	"fmt"
	"time"
)

// WmoCode is a WMO weather interpretation code as reported by Open-Meteo.
type WmoCode int

// Severity ranks a WMO code by how significant the weather it describes is.
// Higher values take precedence when multiple hours are aggregated into a
// single point. Clear sky and unrecognized codes rank lowest.
func (c WmoCode) Severity() int {
	switch {
	case c >= 95 && c <= 99:
		return 100 // thunderstorm
	case c >= 80 && c <= 86:
		return 80 // rain/snow showers
	case c >= 71 && c <= 77:
		return 70 // snow
	case c >= 51 && c <= 67:
		return 60 // drizzle/rain
	case c == 45 || c == 48:
		return 50 // fog
	case c == 3:
		return 30 // overcast
	case c == 2:
		return 20 // partly cloudy
	case c == 1:
		return 10 // mainly clear
	default:
		return 0 // clear, or unrecognized
	}
}

// Symbol returns the weather emoji for this code at the given hour of day.
// Hours outside 06-19 use the night variant where one exists.
func (c WmoCode) Symbol(hour int) string {
	night := hour < 6 || hour >= 20
	switch {
	case c == 0 || c == 1:
		if night {
			return "\U0001F319" // crescent moon
		}
		if c == 0 {
			return "\U0001F31E" // sun with rays
		}
		return "\U0001F324" // sun with small cloud
	case c == 2:
		if night {
			return "☁" // cloud
		}
		return "⛅" // sun behind cloud
	case c == 3:
		return "☁" // cloud
	case c == 45 || c == 48:
		return "\U0001F32B" // fog
	case c >= 51 && c <= 67:
		return "\U0001F327" // cloud with rain
	case c >= 71 && c <= 75:
		return "❄" // snowflake
	case c == 77 || c == 85 || c == 86:
		return "\U0001F328" // cloud with snow
	case c >= 80 && c <= 82:
		if night {
			return "\U0001F327" // cloud with rain
		}
		return "\U0001F326" // sun behind cloud with rain
	case c >= 95 && c <= 99:
		return "⛈" // thunder cloud and rain
	default:
		return "?"
	}
}

// WeatherPoint is one sample of the forecast time series. Each field is
// independently optional; nil means the model reported no data, which is
// distinct from any numeric value including zero.
type WeatherPoint struct {
	Temp   *float64
	Precip *float64
	Code   *WmoCode
}

// ModelSeries is one model's points, aligned index-for-index with the shared
// time axis of the Forecast it belongs to.
type ModelSeries struct {
	Model  string
	Points []WeatherPoint
}

// Point returns the sample at index i, or an all-absent point when the model
// reported a shorter (or missing) series.
func (s ModelSeries) Point(i int) WeatherPoint {
	if i < len(s.Points) {
		return s.Points[i]
	}
	return WeatherPoint{}
}

// Coord is the grid-cell coordinate the forecast applies to.
type Coord struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapLink returns a Google Maps URL for the coordinate.
func (c Coord) MapLink() string {
	return fmt.Sprintf("https://www.google.com/maps/place/%v,%v", c.Latitude, c.Longitude)
}

// Forecast is a multi-model hourly weather time series: one strictly
// increasing, evenly spaced time axis shared by all models.
type Forecast struct {
	Times    []time.Time
	Models   []ModelSeries
	Timezone *time.Location
	Location Coord
}

// Current is a single current-weather observation.
type Current struct {
	Weather  WeatherPoint
	Time     time.Time
	Location Coord
}

// Float returns a pointer to v, for building optional WeatherPoint fields.
func Float(v float64) *float64 { return &v }

// Code returns a pointer to WmoCode(v).
func Code(v int) *WmoCode {
	c := WmoCode(v)
	return &c
}
