package synthetic_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/profilemeta/internal/adapters/source"
	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/timeofday"
	"github.com/okian/profilemeta/internal/synthetic"
	"github.com/okian/profilemeta/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a clean ten-day configuration", t, func() {
		cfg := synthetic.Config{Site: "osb", Year: 2021, Days: 10, Seed: 7, Jitter: 2 * time.Minute}
		tbl, stats := synthetic.Generate(cfg)

		Convey("Then nine cycles are generated per day in order", func() {
			So(tbl.Len(), ShouldEqual, 90)
			So(stats.Cycles, ShouldEqual, 90)
			for i := 1; i < tbl.Len(); i++ {
				So(tbl.At(i).AscentStart.After(tbl.At(i-1).AscentStart), ShouldBeTrue)
			}
		})

		Convey("Then every day has one midnight and one noon profile", func() {
			So(stats.Midnight, ShouldEqual, 10)
			So(stats.Noon, ShouldEqual, 10)
			So(stats.Anomalies, ShouldEqual, 0)
			first := tbl.At(0)
			So(first.DescentDuration(), ShouldEqual, synthetic.LongDescent)
			So(timeofday.Classify(calendar.TimeOfDay(first.AscentStart), timeofday.DefaultBands()), ShouldEqual, timeofday.Midnight)
		})

		Convey("Then the same seed reproduces the table", func() {
			again, _ := synthetic.Generate(cfg)
			So(again.Records(), ShouldResemble, tbl.Records())
		})

		Convey("Then the evaluator agrees with the generator", func() {
			r, err := synthetic.Verify(context.Background(), cfg, tbl, stats)
			So(err, ShouldBeNil)
			So(r.LongDescents, ShouldEqual, 20)
		})
	})

	Convey("Given an anomaly rate of one", t, func() {
		cfg := synthetic.Config{Site: "osb", Year: 2021, Days: 3, Seed: 1, AnomalyRate: 1}
		tbl, stats := synthetic.Generate(cfg)

		Convey("Then every long descent is an anomaly", func() {
			So(stats.Anomalies, ShouldEqual, 6)
			So(stats.Midnight+stats.Noon, ShouldEqual, 0)
			r, err := synthetic.Verify(context.Background(), cfg, tbl, stats)
			So(err, ShouldBeNil)
			So(len(r.Anomalies), ShouldEqual, 6)
		})

		Convey("Then mismatched stats fail verification", func() {
			stats.Anomalies = 0
			_, err := synthetic.Verify(context.Background(), cfg, tbl, stats)
			So(errors.Is(err, synthetic.ErrVerification), ShouldBeTrue)
		})
	})
}

func TestGenerateWideBands(t *testing.T) {
	Convey("Given two-hour bands and an anomaly rate of one", t, func() {
		bands := timeofday.Bands{
			Midnight: timeofday.Band{Lo: 6 * time.Hour, Hi: 8 * time.Hour},
			Noon:     timeofday.Band{Lo: 19 * time.Hour, Hi: 21 * time.Hour},
		}
		cfg := synthetic.Config{Site: "osb", Year: 2021, Days: 2, Seed: 5, Jitter: 2 * time.Minute, AnomalyRate: 1, Bands: bands}
		tbl, stats := synthetic.Generate(cfg)

		Convey("Then every shifted long descent leaves its band", func() {
			for _, c := range tbl.Records() {
				if c.DescentDuration() != synthetic.LongDescent {
					continue
				}
				So(timeofday.Classify(calendar.TimeOfDay(c.AscentStart), bands), ShouldEqual, timeofday.Unclassified)
			}
		})

		Convey("Then verification agrees with the generator", func() {
			r, err := synthetic.Verify(context.Background(), cfg, tbl, stats)
			So(err, ShouldBeNil)
			So(len(r.Anomalies), ShouldEqual, 4)
			So(r.Midnight+r.Noon, ShouldEqual, 0)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given output to a directory and a database", t, func() {
		dir := t.TempDir()
		cfg := &synthetic.Config{
			Site:       "axb",
			Year:       2022,
			Days:       2,
			Seed:       3,
			OutputDir:  filepath.Join(dir, "Profiles"),
			SQLitePath: filepath.Join(dir, "p.db"),
		}

		stats, err := synthetic.Run(context.Background(), cfg)
		So(err, ShouldBeNil)
		So(stats.Cycles, ShouldEqual, 18)

		Convey("Then the CSV loads through the csv source", func() {
			_, statErr := os.Stat(filepath.Join(dir, "Profiles", "axb2022.csv"))
			So(statErr, ShouldBeNil)
			tbl, err := source.NewCSVSource(cfg.OutputDir).Load(context.Background(), "axb", 2022)
			So(err, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 18)
		})

		Convey("Then the database holds the same table", func() {
			db, err := source.OpenSQLite(context.Background(), cfg.SQLitePath)
			So(err, ShouldBeNil)
			defer func() { _ = db.Close() }()
			tbl, err := db.Load(context.Background(), "axb", 2022)
			So(err, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 18)
		})
	})

	Convey("Given a service that is down", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := synthetic.Run(context.Background(), &synthetic.Config{Year: 2021, Days: 1, BaseURL: srv.URL})

		Convey("Then remote verification fails", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "remote verification")
		})
	})
}
