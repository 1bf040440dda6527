package forecast

import (
	"time"

	"github.com/hniksic/openmeteo-cli/internal/dates"
)

// Compact reduces the forecast to fewer points: hours on today's date are
// kept as-is, while other days are grouped into fixed 3-hour buckets
// (boundaries at hours 0, 3, ..., 21). Each bucket keeps its first timestamp
// as the representative time. Temperature is averaged, precipitation summed,
// and the most severe WMO code selected; a field is absent in the output only
// when it was absent in every contributing sample.
//
// Compact must run at most once per fetched forecast: a second pass would
// bucket already-bucketed points.
func (f *Forecast) Compact(today dates.Date) {
	newTimes := make([]time.Time, 0, len(f.Times))
	newModels := make([]ModelSeries, len(f.Models))
	for m := range f.Models {
		newModels[m].Model = f.Models[m].Model
	}

	i := 0
	for i < len(f.Times) {
		t := f.Times[i]
		date := dates.DateOf(t)

		if date == today {
			newTimes = append(newTimes, t)
			for m := range f.Models {
				newModels[m].Points = append(newModels[m].Points, f.Models[m].Point(i))
			}
			i++
			continue
		}

		// Extend the bucket over consecutive hours of the same date that fall
		// before the next 3-hour boundary.
		bucketEnd := t.Hour()/3*3 + 3
		j := i + 1
		for j < len(f.Times) &&
			dates.DateOf(f.Times[j]) == date &&
			f.Times[j].Hour() < bucketEnd {
			j++
		}

		newTimes = append(newTimes, t)
		for m := range f.Models {
			newModels[m].Points = append(newModels[m].Points, aggregateRange(f.Models[m], i, j))
		}
		i = j
	}

	f.Times = newTimes
	f.Models = newModels
}

// aggregateRange reduces a model's samples at indices [from, to) to one point.
func aggregateRange(s ModelSeries, from, to int) WeatherPoint {
	var agg WeatherPoint
	var tempSum float64
	var tempN int
	var precipSum float64
	var precipSeen bool

	for i := from; i < to; i++ {
		p := s.Point(i)
		if p.Temp != nil {
			tempSum += *p.Temp
			tempN++
		}
		if p.Precip != nil {
			precipSum += *p.Precip
			precipSeen = true
		}
		// Strict > keeps the earliest occurrence among equally severe codes.
		if p.Code != nil && (agg.Code == nil || p.Code.Severity() > agg.Code.Severity()) {
			c := *p.Code
			agg.Code = &c
		}
	}

	if tempN > 0 {
		agg.Temp = Float(tempSum / float64(tempN))
	}
	if precipSeen {
		agg.Precip = Float(precipSum)
	}
	return agg
}
