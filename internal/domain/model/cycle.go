// Package model contains domain models passed between layers.
package model

import "time"

// CycleRecord is one up/down cycle of the profiler. All timestamps are UTC.
// Ordering between start and end fields is not validated.
type CycleRecord struct {
	AscentStart  time.Time `json:"ascent_start"`
	AscentEnd    time.Time `json:"ascent_end"`
	DescentStart time.Time `json:"descent_start"`
	DescentEnd   time.Time `json:"descent_end"`
	RestStart    time.Time `json:"rest_start"`
	RestEnd      time.Time `json:"rest_end"`
}

// AscentDuration returns AscentEnd - AscentStart.
func (c CycleRecord) AscentDuration() time.Duration { return c.AscentEnd.Sub(c.AscentStart) }

// DescentDuration returns DescentEnd - DescentStart.
func (c CycleRecord) DescentDuration() time.Duration { return c.DescentEnd.Sub(c.DescentStart) }

// RestDuration returns RestEnd - RestStart.
func (c CycleRecord) RestDuration() time.Duration { return c.RestEnd.Sub(c.RestStart) }

// Table is the read-only set of cycles for one site and year, in load order.
type Table struct {
	site    string
	year    int
	records []CycleRecord
}

// NewTable copies records into a new Table.
func NewTable(site string, year int, records []CycleRecord) *Table {
	rs := make([]CycleRecord, len(records))
	copy(rs, records)
	return &Table{site: site, year: year, records: rs}
}

// Site returns the site identifier the table was loaded for.
func (t *Table) Site() string { return t.site }

// Year returns the deployment year the table was loaded for.
func (t *Table) Year() int { return t.year }

// Len returns the number of cycles. A nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns the cycle at index i. It panics when i is out of range.
func (t *Table) At(i int) CycleRecord { return t.records[i] }

// Records returns a copy of all cycles.
func (t *Table) Records() []CycleRecord {
	out := make([]CycleRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Pick returns copies of the cycles at the given indices, in the given order.
func (t *Table) Pick(indices []int) []CycleRecord {
	out := make([]CycleRecord, 0, len(indices))
	for _, i := range indices {
		out = append(out, t.records[i])
	}
	return out
}
