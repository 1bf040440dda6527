package dates

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// MaxForecastDays is the longest forecast horizon Open-Meteo supports.
const MaxForecastDays = 16

// Kind discriminates the DateSpec variants.
type Kind int

const (
	KindToday Kind = iota
	KindTomorrow
	KindRelative
	KindWeekday
	KindAbsolute
)

// DateSpec is a symbolic, unresolved date as the user wrote it: a literal
// "today"/"tomorrow", a "+N" day offset, a weekday name, or an absolute
// calendar date. Values are comparable; two specs are equal when their kind
// and payload match.
type DateSpec struct {
	Kind    Kind
	Days    int          // KindRelative offset from the reference date
	Weekday time.Weekday // KindWeekday
	Date    Date         // KindAbsolute
}

// DateRange is an inclusive pair of date specifiers. No ordering between
// Start and End is enforced; resolution may produce an inverted interval.
type DateRange struct {
	Start DateSpec
	End   DateSpec
}

var (
	ErrBadDate    = errors.New("dates must be YYYY-MM-DD, +N, a weekday name, 'today' or 'tomorrow'")
	ErrEmptyRange = errors.New("empty range '..' not allowed")
)

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

// Parse converts a single date token into a DateSpec. Tokens are
// case-insensitive. Anything that is not a recognized literal, weekday name,
// "+N" offset, or strict YYYY-MM-DD date is rejected with ErrBadDate.
func Parse(s string) (DateSpec, error) {
	s = strings.ToLower(s)
	switch s {
	case "today":
		return DateSpec{Kind: KindToday}, nil
	case "tomorrow":
		return DateSpec{Kind: KindTomorrow}, nil
	}
	if wd, ok := weekdayNames[s]; ok {
		return DateSpec{Kind: KindWeekday, Weekday: wd}, nil
	}
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		if days, err := strconv.ParseUint(rest, 10, 8); err == nil {
			return DateSpec{Kind: KindRelative, Days: int(days)}, nil
		}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return DateSpec{}, ErrBadDate
	}
	return DateSpec{Kind: KindAbsolute, Date: DateOf(t)}, nil
}

// parseOr parses a date token, or returns def for an empty token.
func parseOr(s string, def DateSpec) (DateSpec, error) {
	if s == "" {
		return def, nil
	}
	return Parse(s)
}

// ParseRange parses a date range expression. A lone date d means the range
// (d, d). With a ".." separator, an empty left side defaults to today and an
// empty right side to the maximum forecast horizon, so "..fri" means "today
// through Friday" and "mon.." means "Monday through 16 days out". A bare ".."
// is rejected.
func ParseRange(s string) (DateRange, error) {
	left, right, found := strings.Cut(s, "..")
	if !found {
		d, err := Parse(s)
		if err != nil {
			return DateRange{}, err
		}
		return DateRange{Start: d, End: d}, nil
	}
	if left == "" && right == "" {
		return DateRange{}, ErrEmptyRange
	}
	start, err := parseOr(left, DateSpec{Kind: KindToday})
	if err != nil {
		return DateRange{}, err
	}
	end, err := parseOr(right, DateSpec{Kind: KindRelative, Days: MaxForecastDays})
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: start, End: end}, nil
}

// Resolve converts the specifier into a concrete calendar date. relativeTo anchors
// the today/tomorrow/+N variants. weekdayStart anchors the forward weekday
// search; it counts as a match if it already falls on the wanted weekday.
// Passing the resolved start of a range as weekdayStart for its end is what
// makes "fri..sun" search for Sunday from the resolved Friday onward.
func (d DateSpec) Resolve(relativeTo, weekdayStart Date) Date {
	switch d.Kind {
	case KindToday:
		return relativeTo
	case KindTomorrow:
		return relativeTo.AddDays(1)
	case KindRelative:
		return relativeTo.AddDays(d.Days)
	case KindWeekday:
		date := weekdayStart
		for date.Weekday() != d.Weekday {
			date = date.AddDays(1)
		}
		return date
	case KindAbsolute:
		return d.Date
	}
	panic("unhandled DateSpec kind")
}
