// Package timewindow classifies record timestamps against named relative
// date ranges such as "last 7 days" or "this month".
package timewindow

import (
	"fmt"
	"strings"
	"time"
)

// Window is a named relative date range used as a filter predicate.
type Window string

const (
	// None applies no constraint.
	None Window = ""
	// Last24h keeps records created at most 24 hours before now.
	Last24h Window = "last24h"
	// Last7d keeps records created at most 7 days before now.
	Last7d Window = "last7d"
	// Last28d keeps records created at most 28 days before now.
	Last28d Window = "last28d"
	// ThisWeek keeps records created since the start of the current week.
	ThisWeek Window = "thisWeek"
	// ThisMonth keeps records created since the first of the current month.
	ThisMonth Window = "thisMonth"
	// ThisYear keeps records created since January 1st of the current year.
	ThisYear Window = "thisYear"
	// All behaves like None as a predicate but asks the presentation layer
	// to show the all-time total banner.
	All Window = "all"
)

const day = 24 * time.Hour

// Windows returns the selectable windows in display order.
func Windows() []Window {
	return []Window{None, Last24h, Last7d, Last28d, ThisWeek, ThisMonth, ThisYear, All}
}

var aliases = map[string]Window{
	"":          None,
	"none":      None,
	"last24h":   Last24h,
	"24h":       Last24h,
	"1d":        Last24h,
	"last7d":    Last7d,
	"7d":        Last7d,
	"1w":        Last7d,
	"last28d":   Last28d,
	"28d":       Last28d,
	"4w":        Last28d,
	"thisweek":  ThisWeek,
	"week":      ThisWeek,
	"thismonth": ThisMonth,
	"month":     ThisMonth,
	"thisyear":  ThisYear,
	"year":      ThisYear,
	"all":       All,
}

// Parse maps a query-string value to a Window. The second result is false
// when the value was not recognised, in which case None is returned.
func Parse(raw string) (Window, bool) {
	w, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return None, false
	}
	return w, true
}

// Valid reports whether w is one of the known windows.
func (w Window) Valid() bool {
	for _, known := range Windows() {
		if w == known {
			return true
		}
	}
	return false
}

// Label is the human readable name of the window.
func (w Window) Label() string {
	switch w {
	case Last24h:
		return "Last 24 hours"
	case Last7d:
		return "Last 7 days"
	case Last28d:
		return "Last 28 days"
	case ThisWeek:
		return "This week"
	case ThisMonth:
		return "This month"
	case ThisYear:
		return "This year"
	case All:
		return "All time"
	default:
		return "Any time"
	}
}

func (w Window) String() string {
	if w == None {
		return "none"
	}
	return string(w)
}

// Next cycles through Windows, wrapping around.
func (w Window) Next() Window {
	all := Windows()
	for i, candidate := range all {
		if candidate == w {
			return all[(i+1)%len(all)]
		}
	}
	return None
}

// Classifier carries the calendar convention used by the calendar-relative
// windows. The zero value uses UTC with weeks starting on Sunday.
type Classifier struct {
	// Location decides where midnight falls. Nil means UTC.
	Location *time.Location
	// WeekStart is the first day of the week for ThisWeek.
	WeekStart time.Weekday
}

// ParseWeekday reads a weekday name such as "monday" or "mon".
func ParseWeekday(raw string) (time.Weekday, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return time.Sunday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("timewindow: unknown weekday %q", raw)
}

func (c Classifier) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Matches reports whether a record created at createdAt falls inside w
// relative to now. A zero createdAt stands for a missing or unparseable
// timestamp and only passes the unconstrained windows.
func (c Classifier) Matches(createdAt time.Time, w Window, now time.Time) bool {
	switch w {
	case Last24h:
		return !createdAt.IsZero() && now.Sub(createdAt) <= day
	case Last7d:
		return !createdAt.IsZero() && now.Sub(createdAt) <= 7*day
	case Last28d:
		return !createdAt.IsZero() && now.Sub(createdAt) <= 28*day
	case ThisWeek, ThisMonth, ThisYear:
		if createdAt.IsZero() {
			return false
		}
		return !createdAt.Before(c.Start(w, now))
	default:
		return true
	}
}

// Start returns the inclusive lower bound of a calendar-relative window.
// Rolling windows return now minus their length; None and All return the
// zero time.
func (c Classifier) Start(w Window, now time.Time) time.Time {
	local := now.In(c.location())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.location())
	switch w {
	case Last24h:
		return now.Add(-day)
	case Last7d:
		return now.Add(-7 * day)
	case Last28d:
		return now.Add(-28 * day)
	case ThisWeek:
		back := (int(local.Weekday()) - int(c.WeekStart) + 7) % 7
		return midnight.AddDate(0, 0, -back)
	case ThisMonth:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, c.location())
	case ThisYear:
		return time.Date(local.Year(), time.January, 1, 0, 0, 0, 0, c.location())
	default:
		return time.Time{}
	}
}
