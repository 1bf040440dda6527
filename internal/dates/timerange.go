package dates

import "time"

// Open-Meteo emits hourly forecast points at hour starts, so after 23:00
// there is no same-day data left to show. Past this cutoff "today" is treated
// as "tomorrow" on both ends of the range, which keeps the window non-empty
// without changing its length. 22:55 rather than 23:00 leaves headroom for
// network latency.
const cutoff = 22*time.Hour + 55*time.Minute

// ResolveTimeRange converts an inclusive date range into a half-open interval
// [start, end) of absolute instants in the given location. The end instant is
// midnight of the day after the resolved end date. The start is clamped to
// now so that past hours are never displayed.
//
// Only the literal "today" specifier is subject to the late-day cutoff; a
// weekday that happens to resolve to today's date, and absolute dates, are
// left alone.
func ResolveTimeRange(r DateRange, loc *time.Location, now time.Time) (start, end time.Time) {
	now = now.In(loc)
	today := DateOf(now)

	if sinceMidnight(now) > cutoff {
		if r.Start.Kind == KindToday {
			r.Start = DateSpec{Kind: KindTomorrow}
		}
		if r.End.Kind == KindToday {
			r.End = DateSpec{Kind: KindTomorrow}
		}
	}

	startDate := r.Start.Resolve(today, today)
	endDate := r.End.Resolve(today, startDate)

	start = startDate.In(loc)
	if start.Before(now) {
		start = now
	}
	end = endDate.AddDays(1).In(loc)
	return start, end
}

// sinceMidnight returns t's wall-clock time-of-day as a duration.
func sinceMidnight(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
