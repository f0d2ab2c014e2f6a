// Package timegrid holds the day-local time value types and interval
// arithmetic used by availability resolution. All values live inside a
// single calendar day; a window never spans midnight.
package timegrid

import (
	"fmt"
	"sort"
	"time"
)

// TimeOfDay is a wall-clock time within one day.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// FromClock extracts the time-of-day of an absolute timestamp.
func FromClock(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight, the ordering key.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

func (t TimeOfDay) After(o TimeOfDay) bool {
	return t.Minutes() > o.Minutes()
}

func (t TimeOfDay) Equal(o TimeOfDay) bool {
	return t.Minutes() == o.Minutes()
}

// AddMinutes returns the time-of-day m minutes later, capped at end of day.
func (t TimeOfDay) AddMinutes(m int) TimeOfDay {
	total := t.Minutes() + m
	if total > 24*60 {
		total = 24 * 60
	}
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// Window is a half-open [Start, End) interval within one day.
type Window struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewWindow builds a window, rejecting empty and inverted ranges.
func NewWindow(start, end TimeOfDay) (Window, error) {
	if !end.After(start) {
		return Window{}, fmt.Errorf("invalid window %s-%s: end must be after start", start, end)
	}
	return Window{Start: start, End: end}, nil
}

func (w Window) String() string {
	return fmt.Sprintf("%s-%s", w.Start, w.End)
}

// Overlaps reports whether two windows share any time. Touching
// windows (a.End == b.Start) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// Contains reports whether the point lies inside the window.
func (w Window) Contains(p TimeOfDay) bool {
	return !p.Before(w.Start) && p.Before(w.End)
}

// ContainsWindow reports whether o lies fully inside w.
func (w Window) ContainsWindow(o Window) bool {
	return !o.Start.Before(w.Start) && !o.End.After(w.End)
}

// Subtract removes every hole from the window. The result is the
// ordered set of remaining fragments; a single hole in the middle
// splits the window in two.
func (w Window) Subtract(holes []Window) []Window {
	remaining := []Window{w}

	for _, hole := range holes {
		var next []Window
		for _, r := range remaining {
			if !r.Overlaps(hole) {
				next = append(next, r)
				continue
			}
			if hole.Start.After(r.Start) {
				next = append(next, Window{Start: r.Start, End: hole.Start})
			}
			if hole.End.Before(r.End) {
				next = append(next, Window{Start: hole.End, End: r.End})
			}
		}
		remaining = next
	}

	return remaining
}

// SortWindows orders windows by start time in place.
func SortWindows(ws []Window) {
	sort.Slice(ws, func(i, j int) bool {
		return ws[i].Start.Before(ws[j].Start)
	})
}
