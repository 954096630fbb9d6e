package solarbands_test

import (
	"testing"
	"time"

	"github.com/okian/profilemeta/internal/domain/solarbands"
	"github.com/okian/profilemeta/internal/domain/timeofday"
	. "github.com/smartystreets/goconvey/convey"
)

func absDur(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func TestSuggest(t *testing.T) {
	Convey("Given the Oregon Slope Base mooring", t, func() {
		// 44.53N 125.39W
		date := time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)
		s := solarbands.Suggest(44.53, -125.39, date, 0)

		Convey("Then solar noon falls near 20:30 UTC", func() {
			// 125.39 degrees west is 8h21m behind UTC; the equation of time
			// in mid January adds roughly nine minutes.
			want := 20*time.Hour + 30*time.Minute
			So(absDur(s.NoonOffset-want), ShouldBeLessThan, 20*time.Minute)
		})

		Convey("Then the bands are centred and use the default width", func() {
			So(s.Bands.Noon.Hi-s.Bands.Noon.Lo, ShouldEqual, 2*solarbands.DefaultHalfWidth)
			So(s.Bands.Noon.ContainsOpen(s.NoonOffset), ShouldBeTrue)
			So(s.Bands.Midnight.ContainsOpen(s.MidnightOffset), ShouldBeTrue)
			So(timeofday.Classify(s.NoonOffset, s.Bands), ShouldEqual, timeofday.Noon)
		})

		Convey("Then solar midnight is about twelve hours from noon", func() {
			diff := absDur(s.NoonOffset - s.MidnightOffset)
			So(absDur(diff-12*time.Hour), ShouldBeLessThan, 5*time.Minute)
		})
	})

	Convey("Given a site on the prime meridian", t, func() {
		s := solarbands.Suggest(51.48, 0, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), 30*time.Minute)

		Convey("Then the midnight band stays within the day", func() {
			So(s.Bands.Midnight.Lo, ShouldBeGreaterThanOrEqualTo, time.Duration(0))
			So(s.Bands.Midnight.Hi, ShouldBeLessThanOrEqualTo, 24*time.Hour)
			So(s.Bands.Noon.Hi-s.Bands.Noon.Lo, ShouldEqual, time.Hour)
		})
	})
}
