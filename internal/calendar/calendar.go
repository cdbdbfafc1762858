// Package calendar resolves the analyzed date range into per-day weekday and
// Japanese national holiday context.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the rendering used for dates in calendar output.
const DateLayout = "2006-01-02"

// Day is one calendar entry.
type Day struct {
	Date        time.Time
	Weekday     time.Weekday
	Weekend     bool
	Holiday     bool
	HolidayName string
}

// Kind labels the day as "holiday", "weekend", or "weekday".
func (d Day) Kind() string {
	switch {
	case d.Holiday:
		return "holiday"
	case d.Weekend:
		return "weekend"
	default:
		return "weekday"
	}
}

// Range is an inclusive span of civil dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("invalid date range")

// NewRange normalizes start and end to civil dates and checks ordering.
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: civil(start), End: civil(end)}
	if r.End.Before(r.Start) {
		return Range{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return r, nil
}

// SingleDay returns a range covering only d.
func SingleDay(d time.Time) Range {
	d = civil(d)
	return Range{Start: d, End: d}
}

// Days returns the number of dates in the range.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start)/(24*time.Hour)) + 1
}

func (r Range) String() string {
	if r.Start.Equal(r.End) {
		return r.Start.Format(DateLayout)
	}
	return r.Start.Format(DateLayout) + " ~ " + r.End.Format(DateLayout)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Resolver maps date ranges to calendar context.
type Resolver struct {
	clock    Clock
	holidays *HolidayTable
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source used for the yesterday fallback.
func WithClock(c Clock) Option {
	return func(r *Resolver) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithHolidayTable shares a holiday table between resolvers.
func WithHolidayTable(t *HolidayTable) Option {
	return func(r *Resolver) {
		if t != nil {
			r.holidays = t
		}
	}
}

// NewResolver constructs a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{clock: SystemClock{}}
	for _, opt := range opts {
		opt(r)
	}
	if r.holidays == nil {
		r.holidays = NewHolidayTable(16)
	}
	return r
}

// Yesterday returns the civil date before the clock's current local date.
func (r *Resolver) Yesterday() time.Time {
	y, m, d := r.clock.Now().Date()
	return date(y, m, d-1)
}

// EffectiveRange picks the explicit range when given, otherwise the min/max of
// dates, otherwise yesterday.
func (r *Resolver) EffectiveRange(explicit *Range, dates []time.Time) Range {
	if explicit != nil {
		return *explicit
	}
	var lo, hi time.Time
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		d = civil(d)
		if lo.IsZero() || d.Before(lo) {
			lo = d
		}
		if hi.IsZero() || d.After(hi) {
			hi = d
		}
	}
	if lo.IsZero() {
		return SingleDay(r.Yesterday())
	}
	return Range{Start: lo, End: hi}
}

// Resolve returns the effective range and one Day per date in it, ascending.
func (r *Resolver) Resolve(explicit *Range, dates []time.Time) (Range, []Day) {
	rg := r.EffectiveRange(explicit, dates)
	return rg, r.Days(rg)
}

// Days returns one entry per date in rg, ascending.
func (r *Resolver) Days(rg Range) []Day {
	days := make([]Day, 0, rg.Days())
	for d := rg.Start; !d.After(rg.End); d = d.AddDate(0, 0, 1) {
		days = append(days, r.Day(d))
	}
	return days
}

// Day resolves a single date.
func (r *Resolver) Day(d time.Time) Day {
	d = civil(d)
	wd := d.Weekday()
	day := Day{
		Date:    d,
		Weekday: wd,
		Weekend: wd == time.Saturday || wd == time.Sunday,
	}
	if name, ok := r.holidays.Lookup(d); ok {
		day.Holiday = true
		day.HolidayName = name
	}
	return day
}
