package evaluation_test

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/timeofday"
	. "github.com/smartystreets/goconvey/convey"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

// cycle builds a record with the given ascent start and descent length.
func cycle(ascent string, descent time.Duration) model.CycleRecord {
	a := at(ascent)
	ds := a.Add(-4 * time.Hour)
	return model.CycleRecord{
		AscentStart:  a,
		AscentEnd:    a.Add(time.Hour),
		DescentStart: ds,
		DescentEnd:   ds.Add(descent),
		RestStart:    ds.Add(descent),
		RestEnd:      a,
	}
}

func TestEvaluate(t *testing.T) {
	Convey("Given the single January cycle with a 70 minute descent", t, func() {
		tbl := model.NewTable("osb", 2021, []model.CycleRecord{{
			AscentStart:  at("2021-01-05T07:20:00"),
			DescentStart: at("2021-01-05T03:00:00"),
			DescentEnd:   at("2021-01-05T04:10:00"),
		}})
		ev := evaluation.New(evaluation.WithBands(timeofday.Bands{
			Midnight: timeofday.NewBand(7*60+10, 7*60+34),
			Noon:     timeofday.NewBand(20*60+30, 20*60+54),
		}))

		Convey("When evaluating January 2021", func() {
			r := ev.Evaluate(tbl, at("2021-01-01T00:00:00"), at("2021-01-31T00:00:00"))

			Convey("Then it is one midnight cycle", func() {
				total, midnight, noon := r.Counts()
				So(total, ShouldEqual, 1)
				So(midnight, ShouldEqual, 1)
				So(noon, ShouldEqual, 0)
				So(r.Anomalies, ShouldBeEmpty)
				So(r.LongDescents, ShouldEqual, 1)
				So(r.ExpectedCycles, ShouldEqual, 30*9)
				So(r.Descent.Count, ShouldEqual, 1)
				So(r.Descent.Mean, ShouldEqual, 70.0)
			})
		})
	})

	Convey("Given a mix of cycles", t, func() {
		tbl := model.NewTable("osb", 2021, []model.CycleRecord{
			cycle("2021-01-05T07:20:00", 70*time.Minute), // midnight
			cycle("2021-01-05T20:40:00", 65*time.Minute), // noon
			cycle("2021-01-05T12:00:00", 20*time.Minute), // short
			cycle("2021-01-05T12:00:00", 75*time.Minute), // anomaly
			cycle("2021-01-05T07:10:00", 60*time.Minute), // on edge, threshold exactly met: anomaly
			cycle("2021-01-05T07:20:00", 59*time.Minute), // short, not classified
			cycle("2021-02-05T07:20:00", 70*time.Minute), // out of range
		})
		ev := evaluation.New()

		r := ev.Evaluate(tbl, at("2021-01-01T00:00:00"), at("2021-01-31T00:00:00"))

		Convey("Then totals count every in-range cycle", func() {
			So(r.Total, ShouldEqual, 6)
		})

		Convey("Then only long descents are classified", func() {
			So(r.Midnight, ShouldEqual, 1)
			So(r.Noon, ShouldEqual, 1)
			So(r.LongDescents, ShouldEqual, 4)
		})

		Convey("Then anomalies carry their index and time of day", func() {
			So(len(r.Anomalies), ShouldEqual, 2)
			So(r.Anomalies[0].Index, ShouldEqual, 3)
			So(r.Anomalies[0].DayTime, ShouldEqual, 12*time.Hour)
			So(r.Anomalies[0].Descent, ShouldEqual, 75*time.Minute)
			So(r.Anomalies[1].Index, ShouldEqual, 4)
			So(r.Anomalies[1].DayTime, ShouldEqual, 7*time.Hour+10*time.Minute)
		})

		Convey("Then anomalies serialise their durations in minutes", func() {
			data, err := json.Marshal(r.Anomalies[0])
			So(err, ShouldBeNil)

			var body map[string]any
			So(json.Unmarshal(data, &body), ShouldBeNil)
			So(body["day_time_minutes"], ShouldEqual, 720.0)
			So(body["descent_minutes"], ShouldEqual, 75.0)
			So(body["index"], ShouldEqual, 3.0)

			var back evaluation.Anomaly
			So(json.Unmarshal(data, &back), ShouldBeNil)
			So(back.DayTime, ShouldEqual, 12*time.Hour)
			So(back.Descent, ShouldEqual, 75*time.Minute)
			So(back.AscentStart.Equal(r.Anomalies[0].AscentStart), ShouldBeTrue)
		})

		Convey("Then descent statistics cover in-range cycles", func() {
			So(r.Descent.Count, ShouldEqual, 6)
			So(r.Descent.Min, ShouldEqual, 20.0)
			So(r.Descent.Max, ShouldEqual, 75.0)
			So(r.Descent.StdDev, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given cycles at the range edges", t, func() {
		tbl := model.NewTable("osb", 2021, []model.CycleRecord{
			cycle("2021-01-31T00:00:00", 10*time.Minute),
			cycle("2021-01-31T00:00:01", 10*time.Minute),
			cycle("2021-01-01T00:00:00", 10*time.Minute),
		})

		Convey("Then t1 is not padded by a day", func() {
			r := evaluation.New().Evaluate(tbl, at("2021-01-01T00:00:00"), at("2021-01-31T00:00:00"))
			So(r.Total, ShouldEqual, 2)
		})
	})

	Convey("Given a custom threshold", t, func() {
		tbl := model.NewTable("osb", 2021, []model.CycleRecord{
			cycle("2021-01-05T07:20:00", 45*time.Minute),
		})
		r := evaluation.New(evaluation.WithLongDescent(30*time.Minute)).Evaluate(tbl, at("2021-01-01T00:00:00"), at("2021-01-31T00:00:00"))
		So(r.Midnight, ShouldEqual, 1)
	})

	Convey("Given an empty range", t, func() {
		r := evaluation.New().Evaluate(model.NewTable("osb", 2021, nil), at("2021-01-31T00:00:00"), at("2021-01-01T00:00:00"))

		So(r.Total, ShouldEqual, 0)
		So(r.Anomalies, ShouldNotBeNil)
		So(r.ExpectedCycles, ShouldEqual, 0)
		So(r.Descent, ShouldResemble, evaluation.DescentStats{})
	})
}

func TestEvaluateNeverDoubleCounts(t *testing.T) {
	Convey("Given random tables", t, func() {
		rng := rand.New(rand.NewSource(11))
		start := at("2021-01-01T00:00:00")
		ev := evaluation.New(evaluation.WithCyclesPerDay(9))

		for round := 0; round < 20; round++ {
			rs := make([]model.CycleRecord, 300)
			for i := range rs {
				a := start.Add(time.Duration(rng.Int63n(int64(40 * calendar.Day))))
				d := time.Duration(rng.Intn(120)) * time.Minute
				rs[i] = model.CycleRecord{AscentStart: a, DescentStart: a.Add(-3 * time.Hour), DescentEnd: a.Add(-3*time.Hour + d)}
			}
			r := ev.Evaluate(model.NewTable("osb", 2021, rs), start, start.Add(30*calendar.Day))

			So(r.Midnight+r.Noon, ShouldBeLessThanOrEqualTo, r.Total)
			So(r.Midnight+r.Noon+len(r.Anomalies), ShouldEqual, r.LongDescents)
		}
	})

	Convey("Given only classified long descents", t, func() {
		tbl := model.NewTable("osb", 2021, []model.CycleRecord{
			cycle("2021-01-05T07:20:00", 70*time.Minute),
			cycle("2021-01-05T20:40:00", 70*time.Minute),
		})
		r := evaluation.New().Evaluate(tbl, at("2021-01-01T00:00:00"), at("2021-01-31T00:00:00"))

		Convey("Then midnight + noon equals total", func() {
			So(r.Midnight+r.Noon, ShouldEqual, r.Total)
		})
	})
}
