// Package evaluation audits profiler scheduling over a time range: how many
// cycles ran, and how many of the long-descent cycles started in the local
// midnight or local noon band.
package evaluation

import (
	"encoding/json"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/timeofday"
)

// Defaults for a shallow profiler deployment.
const (
	DefaultLongDescent  = 60 * time.Minute
	DefaultCyclesPerDay = 9
)

// Anomaly is a long-descent cycle that matched neither band. In JSON the
// durations are reported in minutes, like DescentStats.
type Anomaly struct {
	Index       int
	AscentStart time.Time
	DayTime     time.Duration
	Descent     time.Duration
}

type anomalyJSON struct {
	Index          int       `json:"index"`
	AscentStart    time.Time `json:"ascent_start"`
	DayTimeMinutes float64   `json:"day_time_minutes"`
	DescentMinutes float64   `json:"descent_minutes"`
}

// MarshalJSON implements json.Marshaler.
func (a Anomaly) MarshalJSON() ([]byte, error) {
	return json.Marshal(anomalyJSON{
		Index:          a.Index,
		AscentStart:    a.AscentStart,
		DayTimeMinutes: a.DayTime.Minutes(),
		DescentMinutes: a.Descent.Minutes(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Anomaly) UnmarshalJSON(data []byte) error {
	var v anomalyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Anomaly{
		Index:       v.Index,
		AscentStart: v.AscentStart,
		DayTime:     fromMinutes(v.DayTimeMinutes),
		Descent:     fromMinutes(v.DescentMinutes),
	}
	return nil
}

func fromMinutes(m float64) time.Duration {
	return time.Duration(math.Round(m * float64(time.Minute)))
}

// DescentStats summarizes descent durations of in-range cycles, in minutes.
type DescentStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_minutes"`
	StdDev float64 `json:"stddev_minutes"`
	Min    float64 `json:"min_minutes"`
	Max    float64 `json:"max_minutes"`
}

// Report is the outcome of an evaluation.
// Midnight + Noon + len(Anomalies) == LongDescents <= Total.
type Report struct {
	Total          int          `json:"total"`
	Midnight       int          `json:"midnight"`
	Noon           int          `json:"noon"`
	LongDescents   int          `json:"long_descents"`
	Anomalies      []Anomaly    `json:"anomalies"`
	Descent        DescentStats `json:"descent"`
	ExpectedCycles int          `json:"expected_cycles"`
}

// Counts returns (total, midnight, noon).
func (r Report) Counts() (int, int, int) { return r.Total, r.Midnight, r.Noon }

// Evaluator holds the immutable evaluation parameters.
type Evaluator struct {
	bands        timeofday.Bands
	longDescent  time.Duration
	cyclesPerDay int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithBands sets the midnight and noon bands.
func WithBands(b timeofday.Bands) Option {
	return func(e *Evaluator) { e.bands = b }
}

// WithLongDescent sets the minimum descent duration that makes a cycle
// eligible for classification.
func WithLongDescent(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.longDescent = d
		}
	}
}

// WithCyclesPerDay sets the scheduled number of cycles per day.
func WithCyclesPerDay(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.cyclesPerDay = n
		}
	}
}

// New creates an Evaluator with the default bands and thresholds.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		bands:        timeofday.DefaultBands(),
		longDescent:  DefaultLongDescent,
		cyclesPerDay: DefaultCyclesPerDay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bands returns the bands the evaluator classifies against.
func (e *Evaluator) Bands() timeofday.Bands { return e.bands }

// Evaluate counts cycles whose ascent start lies in [t0, t1] (inclusive, with
// no one-day padding of t1, unlike the window selector) and classifies every
// cycle whose descent lasted at least the long-descent threshold. Long
// descents outside both bands are returned as anomalies; they never abort
// the evaluation.
func (e *Evaluator) Evaluate(t *model.Table, t0, t1 time.Time) Report {
	r := Report{Anomalies: []Anomaly{}}
	var descents []float64

	for i := 0; i < t.Len(); i++ {
		c := t.At(i)
		if c.AscentStart.Before(t0) || c.AscentStart.After(t1) {
			continue
		}
		r.Total++

		descent := c.DescentDuration()
		descents = append(descents, descent.Minutes())
		if descent < e.longDescent {
			continue
		}
		r.LongDescents++

		dayTime := calendar.TimeOfDay(c.AscentStart)
		switch timeofday.Classify(dayTime, e.bands) {
		case timeofday.Midnight:
			r.Midnight++
		case timeofday.Noon:
			r.Noon++
		default:
			r.Anomalies = append(r.Anomalies, Anomaly{
				Index:       i,
				AscentStart: c.AscentStart,
				DayTime:     dayTime,
				Descent:     descent,
			})
		}
	}

	r.Descent = summarize(descents)
	if t1.After(t0) {
		r.ExpectedCycles = int(t1.Sub(t0)/calendar.Day) * e.cyclesPerDay
	}
	return r
}

func summarize(minutes []float64) DescentStats {
	if len(minutes) == 0 {
		return DescentStats{}
	}
	s := DescentStats{Count: len(minutes), Min: math.Inf(1), Max: math.Inf(-1)}
	for _, m := range minutes {
		s.Min = math.Min(s.Min, m)
		s.Max = math.Max(s.Max, m)
	}
	if len(minutes) == 1 {
		s.Mean = minutes[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(minutes, nil)
	return s
}
