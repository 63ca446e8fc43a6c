package trips

import (
	"fmt"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
)

type WindowKind string

const (
	WindowAll           WindowKind = "all"
	WindowCurrentShift  WindowKind = "current-shift"
	WindowPreviousShift WindowKind = "previous-shift"
	WindowTrailing      WindowKind = "trailing"
)

// Shift boundaries in facility local time. Each shift lasts 12 hours.
const (
	DayShiftStartHour   = 8
	NightShiftStartHour = 20
	shiftLength         = 12 * time.Hour
)

// Window selects summary rows by their exit time.
type Window struct {
	Kind WindowKind

	// Trailing is the look back for WindowTrailing, e.g. PT6H or P1W.
	Trailing iso8601.Duration

	// Location is the facility zone used to place shift boundaries.
	Location *time.Location

	name string
}

func (w Window) String() string {
	if w.name != "" {
		return w.name
	}

	return string(w.Kind)
}

var windowPresets = map[string]string{
	"last-6h":    "PT6H",
	"last-12h":   "PT12H",
	"last-24h":   "P1D",
	"last-week":  "P1W",
	"last-month": "P30D",
}

// ParseWindow accepts a preset name (current-shift, previous-shift, last-6h,
// last-12h, last-24h, last-week, last-month, all) or a raw ISO-8601 duration
// taken as a trailing window. An empty string means all.
func ParseWindow(value string, loc *time.Location) (Window, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}

	switch value {
	case "", string(WindowAll):
		return Window{Kind: WindowAll, Location: loc, name: string(WindowAll)}, nil
	case string(WindowCurrentShift), string(WindowPreviousShift):
		return Window{Kind: WindowKind(value), Location: loc, name: value}, nil
	}

	raw := value
	if preset, exists := windowPresets[value]; exists {
		raw = preset
	}

	duration, err := iso8601.ParseISO8601(raw)
	if err != nil {
		return Window{}, fmt.Errorf("unknown window %q: %w", value, err)
	}

	return Window{Kind: WindowTrailing, Trailing: duration, Location: loc, name: value}, nil
}

// ShiftStart returns the start of the shift containing t, in loc.
func ShiftStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)

	year, month, day := local.Date()
	switch {
	case local.Hour() >= NightShiftStartHour:
		return time.Date(year, month, day, NightShiftStartHour, 0, 0, 0, loc)
	case local.Hour() >= DayShiftStartHour:
		return time.Date(year, month, day, DayShiftStartHour, 0, 0, 0, loc)
	default:
		return time.Date(year, month, day-1, NightShiftStartHour, 0, 0, 0, loc)
	}
}

// Bounds returns the [start, end) interval the window covers relative to
// reference. Trailing windows are open ended; end is the zero time. The all
// window reports ok false.
func (w Window) Bounds(reference time.Time) (start time.Time, end time.Time, ok bool) {
	switch w.Kind {
	case WindowCurrentShift:
		start = ShiftStart(reference, w.Location)
		return start, start.Add(shiftLength), true
	case WindowPreviousShift:
		end = ShiftStart(reference, w.Location)
		return end.Add(-shiftLength), end, true
	case WindowTrailing:
		lookBack := w.Trailing.Shift(reference).Sub(reference)
		return reference.Add(-lookBack), time.Time{}, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// WithinWindow reports whether the row's exit time falls inside the window.
// Rows without an exit time only match the all window.
func WithinWindow(row TripSummary, window Window, reference time.Time) bool {
	start, end, bounded := window.Bounds(reference)
	if !bounded {
		return true
	}
	if row.ExitTime.IsZero() {
		return false
	}

	if row.ExitTime.Before(start) {
		return false
	}
	if !end.IsZero() && !row.ExitTime.Before(end) {
		return false
	}

	return true
}
