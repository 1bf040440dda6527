package forecast

import (
	"testing"
	"time"

	"github.com/hniksic/openmeteo-cli/internal/dates"
)

// hourly builds a time axis of n consecutive hours starting at start.
func hourly(start time.Time, n int) []time.Time {
	times := make([]time.Time, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return times
}

func point(temp, precip float64, code int) WeatherPoint {
	return WeatherPoint{Temp: Float(temp), Precip: Float(precip), Code: Code(code)}
}

func TestCompactAggregation(t *testing.T) {
	// Three hours of a non-today date collapse into one bucket: temperature
	// averaged, precipitation summed, most severe code selected.
	day := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	f := &Forecast{
		Times: hourly(day, 3),
		Models: []ModelSeries{{
			Model: "test_model",
			Points: []WeatherPoint{
				{Temp: Float(10), Precip: Float(0), Code: Code(0)},
				{Temp: Float(12), Precip: Float(1), Code: Code(61)},
				{Temp: Float(14)},
			},
		}},
	}

	f.Compact(dates.NewDate(2025, time.January, 15))

	if len(f.Times) != 1 {
		t.Fatalf("got %d output times, want 1", len(f.Times))
	}
	if !f.Times[0].Equal(day) {
		t.Errorf("representative time = %v, want %v", f.Times[0], day)
	}

	p := f.Models[0].Points[0]
	if p.Temp == nil || *p.Temp != 12 {
		t.Errorf("temp = %v, want 12", p.Temp)
	}
	if p.Precip == nil || *p.Precip != 1 {
		t.Errorf("precip = %v, want 1", p.Precip)
	}
	if p.Code == nil || *p.Code != 61 {
		t.Errorf("code = %v, want 61 (rain outranks clear)", p.Code)
	}
}

func TestCompactKeepsTodayHourly(t *testing.T) {
	// 22:00 and 23:00 today stay as-is; the next day's 00:00-05:00 collapse
	// into two 3-hour buckets.
	start := time.Date(2025, time.January, 15, 22, 0, 0, 0, time.UTC)
	n := 8
	points := make([]WeatherPoint, n)
	for i := range points {
		points[i] = point(float64(i), 0, 0)
	}
	f := &Forecast{
		Times:  hourly(start, n),
		Models: []ModelSeries{{Model: "m", Points: points}},
	}

	f.Compact(dates.NewDate(2025, time.January, 15))

	wantTimes := []time.Time{
		start,                     // 15th 22:00, hourly
		start.Add(1 * time.Hour),  // 15th 23:00, hourly
		start.Add(2 * time.Hour),  // 16th 00:00, bucket 00-03
		start.Add(5 * time.Hour),  // 16th 03:00, bucket 03-06
	}
	if len(f.Times) != len(wantTimes) {
		t.Fatalf("got %d output times, want %d", len(f.Times), len(wantTimes))
	}
	for i, want := range wantTimes {
		if !f.Times[i].Equal(want) {
			t.Errorf("times[%d] = %v, want %v", i, f.Times[i], want)
		}
	}

	// Today's points pass through unchanged.
	for i := 0; i < 2; i++ {
		if got := *f.Models[0].Points[i].Temp; got != float64(i) {
			t.Errorf("today point %d temp = %v, want %d", i, got, i)
		}
	}
	// Bucket temps are means of their three hours.
	if got := *f.Models[0].Points[2].Temp; got != 3 {
		t.Errorf("bucket 00-03 temp = %v, want 3", got)
	}
	if got := *f.Models[0].Points[3].Temp; got != 6 {
		t.Errorf("bucket 03-06 temp = %v, want 6", got)
	}
}

func TestCompactBucketAlignment(t *testing.T) {
	// A series starting mid-bucket at 01:00 produces a short first bucket
	// (01:00-03:00); boundaries stay fixed at hours 0, 3, 6, ...
	start := time.Date(2025, time.January, 16, 1, 0, 0, 0, time.UTC)
	points := make([]WeatherPoint, 5)
	for i := range points {
		points[i] = point(float64(10+i), 0, 0)
	}
	f := &Forecast{
		Times:  hourly(start, 5), // 01 02 03 04 05
		Models: []ModelSeries{{Model: "m", Points: points}},
	}

	f.Compact(dates.NewDate(2025, time.January, 15))

	if len(f.Times) != 2 {
		t.Fatalf("got %d output times, want 2", len(f.Times))
	}
	if f.Times[0].Hour() != 1 || f.Times[1].Hour() != 3 {
		t.Errorf("bucket start hours = %d, %d, want 1, 3", f.Times[0].Hour(), f.Times[1].Hour())
	}
	if got := *f.Models[0].Points[0].Temp; got != 10.5 {
		t.Errorf("first bucket temp = %v, want 10.5 (mean of 10, 11)", got)
	}
	if got := *f.Models[0].Points[1].Temp; got != 13 {
		t.Errorf("second bucket temp = %v, want 13 (mean of 12, 13, 14)", got)
	}
}

func TestCompactDoesNotCrossDays(t *testing.T) {
	// 23:00 of one day and 00:00 of the next share no bucket even though
	// both fall in the 21-24 and 0-3 windows respectively.
	start := time.Date(2025, time.January, 16, 23, 0, 0, 0, time.UTC)
	f := &Forecast{
		Times: hourly(start, 2),
		Models: []ModelSeries{{
			Model:  "m",
			Points: []WeatherPoint{point(5, 0, 0), point(7, 0, 0)},
		}},
	}

	f.Compact(dates.NewDate(2025, time.January, 15))

	if len(f.Times) != 2 {
		t.Fatalf("got %d output times, want 2 (buckets must not span days)", len(f.Times))
	}
}

func TestCompactAbsentPropagation(t *testing.T) {
	day := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	f := &Forecast{
		Times: hourly(day, 3),
		Models: []ModelSeries{{
			Model: "m",
			Points: []WeatherPoint{
				{Precip: Float(0.5)},
				{},
				{Precip: Float(0.2)},
			},
		}},
	}

	f.Compact(dates.NewDate(2025, time.January, 15))

	p := f.Models[0].Points[0]
	if p.Temp != nil {
		t.Errorf("temp = %v, want absent (all inputs absent)", *p.Temp)
	}
	if p.Code != nil {
		t.Errorf("code = %v, want absent", *p.Code)
	}
	if p.Precip == nil || *p.Precip != 0.7 {
		t.Errorf("precip = %v, want 0.7", p.Precip)
	}
}

func TestCompactSeverityTieKeepsFirst(t *testing.T) {
	// 61 and 63 share a severity rank; the earlier hour wins.
	day := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	f := &Forecast{
		Times: hourly(day, 2),
		Models: []ModelSeries{{
			Model:  "m",
			Points: []WeatherPoint{{Code: Code(61)}, {Code: Code(63)}},
		}},
	}

	f.Compact(dates.NewDate(2025, time.January, 15))

	if p := f.Models[0].Points[0]; p.Code == nil || *p.Code != 61 {
		t.Errorf("code = %v, want 61 (first of equally severe codes)", p.Code)
	}
}

func TestCompactModelsStayAligned(t *testing.T) {
	day := time.Date(2025, time.January, 16, 0, 0, 0, 0, time.UTC)
	f := &Forecast{
		Times: hourly(day, 6),
		Models: []ModelSeries{
			{Model: "a", Points: []WeatherPoint{
				point(1, 0, 0), point(2, 0, 0), point(3, 0, 0),
				point(4, 0, 0), point(5, 0, 0), point(6, 0, 0),
			}},
			// Model b reported a truncated series; missing samples are absent.
			{Model: "b", Points: []WeatherPoint{point(10, 0, 0)}},
		},
	}

	f.Compact(dates.NewDate(2025, time.January, 15))

	if len(f.Times) != 2 {
		t.Fatalf("got %d output times, want 2", len(f.Times))
	}
	for _, m := range f.Models {
		if len(m.Points) != len(f.Times) {
			t.Fatalf("model %s has %d points for %d times", m.Model, len(m.Points), len(f.Times))
		}
	}
	if got := *f.Models[1].Points[0].Temp; got != 10 {
		t.Errorf("model b bucket 1 temp = %v, want 10 (only present sample)", got)
	}
	if f.Models[1].Points[1].Temp != nil {
		t.Errorf("model b bucket 2 temp = %v, want absent", *f.Models[1].Points[1].Temp)
	}
}
