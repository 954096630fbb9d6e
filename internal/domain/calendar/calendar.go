// Package calendar holds the UTC date helpers shared by the window selector,
// the evaluator and the nearest-target lookup.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Day is the calendar-day length used by window arithmetic. Profiler
// timestamps are UTC so there are no DST-length days.
const Day = 24 * time.Hour

const dateLayout = "2006-01-02"

// FloorToDay truncates t to midnight of its UTC calendar day.
func FloorToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// TimeOfDay returns the offset of t from its UTC midnight.
func TimeOfDay(t time.Time) time.Duration {
	return t.Sub(FloorToDay(t))
}

// DayOfYear returns the 1-based Gregorian day of year of t in UTC.
func DayOfYear(t time.Time) int {
	u := t.UTC()
	return julian.DayOfYearGregorian(u.Year(), int(u.Month()), u.Day())
}

// DateFromDayOfYear returns midnight UTC of day doy in year. Values outside
// the year roll over into neighbouring years, i.e. the result is always
// January 1st plus doy-1 days.
func DateFromDayOfYear(year, doy int) time.Time {
	days := 365
	if julian.LeapYearGregorian(year) {
		days = 366
	}
	if doy < 1 || doy > days {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
	}
	m, d := julian.DayOfYearToCalendar(doy, days == 366)
	return time.Date(year, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// DayOfMonthString renders d with a leading zero below 10.
func DayOfMonthString(d int) string {
	if d > 9 {
		return strconv.Itoa(d)
	}
	return "0" + strconv.Itoa(d)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// ParseMinutes parses a time-of-day given either as plain minutes ("440") or
// as HH:MM ("07:20"). Negative and >24h values are accepted as-is.
func ParseMinutes(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if h, m, ok := strings.Cut(s, ":"); ok {
		hh, err := strconv.Atoi(h)
		if err != nil {
			return 0, fmt.Errorf("parse hours in %q: %w", s, err)
		}
		mm, err := strconv.Atoi(m)
		if err != nil {
			return 0, fmt.Errorf("parse minutes in %q: %w", s, err)
		}
		return time.Duration(hh*60+mm) * time.Minute, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse minutes %q: %w", s, err)
	}
	return time.Duration(n) * time.Minute, nil
}

// Target is a parsed lookup target: a calendar date plus a minute offset.
type Target struct {
	Date    time.Time
	Minutes int
}

// ParseTarget parses "YYYY-MM-DDTHH:MM[:SS...]". Only the hour and minute
// are used; anything after the minutes is ignored.
func ParseTarget(s string) (Target, error) {
	datePart, timePart, ok := strings.Cut(strings.TrimSpace(s), "T")
	if !ok {
		return Target{}, fmt.Errorf("target %q: missing 'T' separator", s)
	}
	date, err := ParseDate(datePart)
	if err != nil {
		return Target{}, err
	}
	parts := strings.Split(timePart, ":")
	if len(parts) < 2 {
		return Target{}, fmt.Errorf("target %q: expected HH:MM", s)
	}
	hrs, err := strconv.Atoi(parts[0])
	if err != nil {
		return Target{}, fmt.Errorf("target %q hours: %w", s, err)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return Target{}, fmt.Errorf("target %q minutes: %w", s, err)
	}
	return Target{Date: date, Minutes: hrs*60 + mins}, nil
}

// Span returns the symmetric minute window [Minutes-window, Minutes+window]
// around the target. The bounds are not wrapped at midnight.
func (t Target) Span(windowMinutes int) (time.Duration, time.Duration) {
	lo := time.Duration(t.Minutes-windowMinutes) * time.Minute
	hi := time.Duration(t.Minutes+windowMinutes) * time.Minute
	return lo, hi
}
