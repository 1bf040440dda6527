package render

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/hniksic/openmeteo-cli/internal/forecast"
)

// Point is one fully populated weather sample prepared for JSON output.
// Samples with any absent field are dropped rather than emitted with nulls.
type Point struct {
	Model         string    `json:"model,omitempty"`
	Time          time.Time `json:"time"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Temperature   float64   `json:"temperature"`
	Precipitation float64   `json:"precipitation"`
	WeatherCode   int       `json:"weather_code"`
	WeatherSymbol string    `json:"weather_symbol"`
}

// ForecastTable lays out the forecast as a table: Date and Hour columns,
// then a named group of symbol/Temp/Precip columns per model, restricted to
// the half-open interval [start, end). Consecutive repeated dates are
// blanked so only the first row of each day is labeled.
func ForecastTable(f *forecast.Forecast, start, end time.Time) *Table {
	inRange := func(t time.Time) bool {
		return !t.Before(start) && t.Before(end)
	}

	var dates, hours []string
	for _, t := range f.Times {
		if !inRange(t) {
			continue
		}
		dates = append(dates, t.Format("2006-01-02"))
		hours = append(hours, t.Format("15")+"h")
	}

	table := NewTable().
		Column("Date", Dedup(dates)).
		Column("Hour", hours)

	for _, series := range f.Models {
		var symbols, temps, precips []string
		for i, t := range f.Times {
			if !inRange(t) {
				continue
			}
			p := series.Point(i)
			symbols = append(symbols, FormatSymbol(p.Code, t.Hour()))
			temps = append(temps, FormatTemp(p.Temp))
			precips = append(precips, FormatPrecip(p.Precip))
		}
		table.Group(series.Model).
			Column("", symbols).
			Column("Temp", temps).
			Column("Precip", precips)
	}

	return table
}

// CurrentTable lays out a current-weather observation as a one-row table.
func CurrentTable(cur *forecast.Current) *Table {
	return NewTable().
		Column("Time", []string{cur.Time.Format("2006-01-02 15:04")}).
		Column("", []string{FormatSymbol(cur.Weather.Code, cur.Time.Hour())}).
		Column("Temp", []string{FormatTemp(cur.Weather.Temp)}).
		Column("Precip", []string{FormatPrecip(cur.Weather.Precip)})
}

// ForecastPoints collects all fully populated samples within [start, end)
// across models, sorted by time.
func ForecastPoints(f *forecast.Forecast, start, end time.Time) []Point {
	var points []Point
	for _, series := range f.Models {
		for i, t := range f.Times {
			if t.Before(start) || !t.Before(end) {
				continue
			}
			p := series.Point(i)
			if p.Temp == nil || p.Precip == nil || p.Code == nil {
				continue
			}
			points = append(points, Point{
				Model:         series.Model,
				Time:          t,
				Latitude:      f.Location.Latitude,
				Longitude:     f.Location.Longitude,
				Temperature:   *p.Temp,
				Precipitation: *p.Precip,
				WeatherCode:   int(*p.Code),
				WeatherSymbol: p.Code.Symbol(t.Hour()),
			})
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time.Before(points[j].Time)
	})
	return points
}

// CurrentPoint converts a current-weather observation for JSON output.
// ok is false when any field is absent.
func CurrentPoint(cur *forecast.Current) (Point, bool) {
	w := cur.Weather
	if w.Temp == nil || w.Precip == nil || w.Code == nil {
		return Point{}, false
	}
	return Point{
		Time:          cur.Time,
		Latitude:      cur.Location.Latitude,
		Longitude:     cur.Location.Longitude,
		Temperature:   *w.Temp,
		Precipitation: *w.Precip,
		WeatherCode:   int(*w.Code),
		WeatherSymbol: w.Code.Symbol(cur.Time.Hour()),
	}, true
}

// WriteForecastJSON writes the forecast as one JSON object per line.
func WriteForecastJSON(w io.Writer, f *forecast.Forecast, start, end time.Time) error {
	enc := json.NewEncoder(w)
	for _, p := range ForecastPoints(f, start, end) {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

// WriteCurrentJSON writes a current-weather observation as one JSON object.
// Observations with absent fields produce no output.
func WriteCurrentJSON(w io.Writer, cur *forecast.Current) error {
	p, ok := CurrentPoint(cur)
	if !ok {
		return nil
	}
	return json.NewEncoder(w).Encode(p)
}
