package calendar_test

import (
	"testing"
	"time"

	"github.com/okian/profilemeta/internal/domain/calendar"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFloorAndTimeOfDay(t *testing.T) {
	Convey("Given a sub-second timestamp", t, func() {
		ts := time.Date(2021, 1, 5, 7, 20, 13, 500_000_000, time.UTC)

		So(calendar.FloorToDay(ts), ShouldEqual, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC))
		So(calendar.TimeOfDay(ts), ShouldEqual, 7*time.Hour+20*time.Minute+13500*time.Millisecond)
	})

	Convey("Given a timestamp in another zone", t, func() {
		pst := time.FixedZone("PST", -8*3600)
		ts := time.Date(2021, 1, 4, 23, 20, 0, 0, pst)

		Convey("Then the UTC day is used", func() {
			So(calendar.FloorToDay(ts), ShouldEqual, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC))
			So(calendar.TimeOfDay(ts), ShouldEqual, 7*time.Hour+20*time.Minute)
		})
	})
}

func TestDayOfYear(t *testing.T) {
	Convey("Given dates across leap and common years", t, func() {
		So(calendar.DayOfYear(time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)), ShouldEqual, 1)
		So(calendar.DayOfYear(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 60)
		So(calendar.DayOfYear(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, 61)
		So(calendar.DayOfYear(time.Date(2020, 12, 31, 23, 59, 0, 0, time.UTC)), ShouldEqual, 366)
	})

	Convey("DateFromDayOfYear inverts DayOfYear", t, func() {
		So(calendar.DateFromDayOfYear(2021, 1), ShouldEqual, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
		So(calendar.DateFromDayOfYear(2021, 60), ShouldEqual, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC))
		So(calendar.DateFromDayOfYear(2020, 60), ShouldEqual, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC))
		So(calendar.DateFromDayOfYear(2020, 366), ShouldEqual, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC))

		for doy := 1; doy <= 365; doy += 17 {
			So(calendar.DayOfYear(calendar.DateFromDayOfYear(2021, doy)), ShouldEqual, doy)
		}
	})

	Convey("Out-of-range day numbers roll over", t, func() {
		So(calendar.DateFromDayOfYear(2021, 366), ShouldEqual, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
		So(calendar.DateFromDayOfYear(2021, 0), ShouldEqual, time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC))
	})
}

func TestDayOfMonthString(t *testing.T) {
	Convey("Days are zero padded", t, func() {
		So(calendar.DayOfMonthString(1), ShouldEqual, "01")
		So(calendar.DayOfMonthString(9), ShouldEqual, "09")
		So(calendar.DayOfMonthString(10), ShouldEqual, "10")
		So(calendar.DayOfMonthString(31), ShouldEqual, "31")
	})
}

func TestParseTarget(t *testing.T) {
	Convey("Given a target string", t, func() {
		Convey("When it has hours and minutes", func() {
			tg, err := calendar.ParseTarget("2021-01-05T23:58")

			So(err, ShouldBeNil)
			So(tg.Date, ShouldEqual, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC))
			So(tg.Minutes, ShouldEqual, 23*60+58)

			Convey("Then the span is not wrapped at midnight", func() {
				lo, hi := tg.Span(10)
				So(lo, ShouldEqual, (23*60+48)*time.Minute)
				So(hi, ShouldEqual, (24*60+8)*time.Minute)
			})
		})

		Convey("When it carries seconds", func() {
			tg, err := calendar.ParseTarget("2021-01-05T07:20:45")

			So(err, ShouldBeNil)
			So(tg.Minutes, ShouldEqual, 440)
		})

		Convey("When it is near midnight the low edge goes negative", func() {
			tg, err := calendar.ParseTarget("2021-01-06T00:05")
			So(err, ShouldBeNil)
			lo, _ := tg.Span(10)
			So(lo, ShouldEqual, -5*time.Minute)
		})

		Convey("When it is malformed", func() {
			for _, s := range []string{"2021-01-05", "2021-01-05T", "2021-01-05T7", "2021-13-05T07:20", "xxxx-01-05T07:20", "2021-01-05Taa:20"} {
				_, err := calendar.ParseTarget(s)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestParseMinutes(t *testing.T) {
	Convey("Given minute strings", t, func() {
		d, err := calendar.ParseMinutes("440")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, 440*time.Minute)

		d, err = calendar.ParseMinutes("07:34")
		So(err, ShouldBeNil)
		So(d, ShouldEqual, 454*time.Minute)

		_, err = calendar.ParseMinutes("seven")
		So(err, ShouldNotBeNil)
		_, err = calendar.ParseMinutes("07:xx")
		So(err, ShouldNotBeNil)
	})
}
