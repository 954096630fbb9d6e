// Package selector finds the cycles whose ascent start falls inside a date
// range and a time-of-day window.
package selector

import (
	"time"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/timeofday"
)

// Window is a date range plus a time-of-day range. Both are inclusive.
type Window struct {
	Date0 time.Time
	Date1 time.Time
	Time0 time.Duration
	Time1 time.Duration
}

// Select is SelectWindowIndices with the receiver's bounds.
func (w Window) Select(t *model.Table) []int {
	return SelectWindowIndices(t, w.Date0, w.Date1, w.Time0, w.Time1)
}

// SelectWindowIndices returns, in table order, the indices of cycles where
//
//	date0 <= AscentStart <= date1 + 1 day
//	time0 <= AscentStart - floor_to_day(AscentStart) <= time1
//
// The upper date bound is padded by one day so cycles starting late on date1
// are admitted; that padding also admits a cycle starting exactly at midnight
// after date1. The time window is never wrapped across midnight, so a window
// whose bounds fall outside [0, 24h) only matches the in-day part.
// The result is never nil.
func SelectWindowIndices(t *model.Table, date0, date1 time.Time, time0, time1 time.Duration) []int {
	indices := []int{}
	upper := date1.Add(calendar.Day)
	tod := timeofday.Band{Lo: time0, Hi: time1}
	for i := 0; i < t.Len(); i++ {
		a0 := t.At(i).AscentStart
		if a0.Before(date0) || a0.After(upper) {
			continue
		}
		if tod.ContainsClosed(calendar.TimeOfDay(a0)) {
			indices = append(indices, i)
		}
	}
	return indices
}
