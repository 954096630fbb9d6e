package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/profilemeta/internal/adapters/http/api"
	"github.com/okian/profilemeta/internal/adapters/source"
	service "github.com/okian/profilemeta/internal/app"
	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/selector"
	"github.com/okian/profilemeta/internal/domain/sensors"
	"github.com/okian/profilemeta/internal/domain/solarbands"
	"github.com/okian/profilemeta/internal/domain/timeofday"
)

type mockDeps struct {
	table     *model.Table
	err       error
	lastWin   selector.Window
	lastNear  string
	lastWidth int
	lastT0    time.Time
	report    evaluation.Report
}

func (m *mockDeps) SelectWindow(_ context.Context, _ string, _ int, w selector.Window) ([]int, *model.Table, error) {
	m.lastWin = w
	if m.err != nil {
		return nil, nil, m.err
	}
	return w.Select(m.table), m.table, nil
}

func (m *mockDeps) FindNearest(_ context.Context, _ string, _ int, target string, window int) ([]int, *model.Table, error) {
	m.lastNear, m.lastWidth = target, window
	if m.err != nil {
		return nil, nil, m.err
	}
	return []int{0}, m.table, nil
}

func (m *mockDeps) Evaluate(_ context.Context, _ string, _ int, t0, _ time.Time) (evaluation.Report, error) {
	m.lastT0 = t0
	return m.report, m.err
}

func (m *mockDeps) Sensors() ([]sensors.Sensor, error) {
	return []sensors.Sensor{
		{Code: "N", Name: "Nitrate", Schedule: sensors.MidnightNoonAscent},
		{Code: "T", Name: "Temperature", Schedule: sensors.Continuous},
	}, nil
}

func (m *mockDeps) Sensor(code string) (sensors.Sensor, error) {
	if code == "T" {
		return sensors.Sensor{Code: "T", Name: "Temperature"}, nil
	}
	return sensors.Sensor{}, fmt.Errorf("%w: %q", sensors.ErrUnknownSensor, code)
}

func (m *mockDeps) SuggestBands(_, _ float64, date time.Time, half time.Duration) (solarbands.Suggestion, error) {
	return solarbands.Suggestion{
		Bands:     timeofday.Bands{Midnight: timeofday.NewBand(500, 500+2*int(half/time.Minute)), Noon: timeofday.DefaultBands().Noon},
		SolarNoon: date.Add(20 * time.Hour),
	}, nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} { return map[string]interface{}{"started": true} }

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return mux
}

func get(mux *http.ServeMux, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func osbTable() *model.Table {
	day := time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC)
	return model.NewTable("osb", 2021, []model.CycleRecord{
		{AscentStart: day.Add(7*time.Hour + 20*time.Minute)},
		{AscentStart: day.Add(10 * time.Hour)},
	})
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDeps{table: osbTable()})

		Convey("Then health serves Prometheus metrics", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then health answers JSON clients with a liveness document", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			req.Header.Set("Accept", "application/json")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then stats are served as JSON", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
			So(w.Body.String(), ShouldContainSubstring, `"uptime_seconds":`)
		})

		Convey("Then non-GET methods are not found", func() {
			req := httptest.NewRequest(http.MethodPost, "/windows", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestWindows(t *testing.T) {
	Convey("Given the windows endpoint", t, func() {
		deps := &mockDeps{table: osbTable()}
		mux := newMux(deps)

		Convey("When a morning window is requested with HH:MM bounds", func() {
			w := get(mux, "/windows?site=osb&year=2021&date0=2021-01-05&date1=2021-01-05&time0=07:00&time1=480")

			Convey("Then matching indices and records are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Count   int                 `json:"count"`
					Indices []int               `json:"indices"`
					Records []model.CycleRecord `json:"records"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Count, ShouldEqual, 1)
				So(body.Indices, ShouldResemble, []int{0})
				So(len(body.Records), ShouldEqual, 1)
				So(deps.lastWin.Time0, ShouldEqual, 7*time.Hour)
				So(deps.lastWin.Time1, ShouldEqual, 8*time.Hour)
			})

			Convey("Then a request id is assigned", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When nothing matches", func() {
			w := get(mux, "/windows?site=osb&year=2021&date0=2021-01-05&date1=2021-01-05&time0=445&time1=454")

			Convey("Then an empty array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"indices":[]`)
			})
		})

		Convey("When the caller sends a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/windows?site=osb&year=2021&date0=2021-01-05&date1=2021-01-05&time0=0&time1=1440", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
			})
		})

		Convey("When parameters are missing or malformed", func() {
			for _, url := range []string{
				"/windows?year=2021&date0=2021-01-05&date1=2021-01-05&time0=0&time1=10",
				"/windows?site=osb&year=x&date0=2021-01-05&date1=2021-01-05&time0=0&time1=10",
				"/windows?site=osb&year=2021&date0=05/01/2021&date1=2021-01-05&time0=0&time1=10",
				"/windows?site=osb&year=2021&date0=2021-01-05&date1=2021-01-05&time0=ab&time1=10",
			} {
				w := get(mux, url)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
			}
		})

		Convey("When the table does not exist", func() {
			deps.err = fmt.Errorf("load osb1999: %w", source.ErrTableNotFound)
			w := get(mux, "/windows?site=osb&year=1999&date0=1999-01-05&date1=1999-01-05&time0=0&time1=10")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the table is malformed", func() {
			deps.err = fmt.Errorf("load osb2021: %w", source.ErrSchema)
			w := get(mux, "/windows?site=osb&year=2021&date0=2021-01-05&date1=2021-01-05&time0=0&time1=10")

			Convey("Then 500 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "schema_error")
			})
		})
	})
}

func TestNearest(t *testing.T) {
	Convey("Given the nearest endpoint", t, func() {
		deps := &mockDeps{table: osbTable()}
		mux := newMux(deps)

		Convey("When no window is given", func() {
			w := get(mux, "/nearest?site=osb&year=2021&target=2021-01-05T07:20")

			Convey("Then the default window is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastNear, ShouldEqual, "2021-01-05T07:20")
				So(deps.lastWidth, ShouldEqual, 10)
			})
		})

		Convey("When the service rejects the target", func() {
			deps.err = fmt.Errorf("%w: bad", service.ErrInvalidTarget)
			w := get(mux, "/nearest?site=osb&year=2021&target=nope&window=5")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given the evaluate endpoint", t, func() {
		deps := &mockDeps{report: evaluation.Report{Total: 1, Midnight: 1, LongDescents: 1, Anomalies: []evaluation.Anomaly{}}}
		mux := newMux(deps)

		Convey("When a date range is evaluated", func() {
			w := get(mux, "/evaluate?site=osb&year=2021&t0=2021-01-01&t1=2021-01-31T23:59:59Z")

			Convey("Then the report is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["total"], ShouldEqual, 1.0)
				So(body["midnight"], ShouldEqual, 1.0)
				So(body["noon"], ShouldEqual, 0.0)
				So(body["site"], ShouldEqual, "osb")
				So(deps.lastT0.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When t1 is malformed", func() {
			w := get(mux, "/evaluate?site=osb&year=2021&t0=2021-01-01&t1=soon")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestCatalog(t *testing.T) {
	Convey("Given the catalog endpoints", t, func() {
		mux := newMux(&mockDeps{})

		Convey("Then sensors can be filtered by schedule", func() {
			w := get(mux, "/sensors?schedule=midnight_noon_ascent")
			So(w.Code, ShouldEqual, http.StatusOK)
			var list []sensors.Sensor
			So(json.Unmarshal(w.Body.Bytes(), &list), ShouldBeNil)
			So(len(list), ShouldEqual, 1)
			So(list[0].Code, ShouldEqual, "N")
		})

		Convey("Then a single sensor is served by code", func() {
			So(get(mux, "/sensors/T").Code, ShouldEqual, http.StatusOK)
			So(get(mux, "/sensors/Z").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then band suggestions honour half_width", func() {
			w := get(mux, "/bands?lat=44.53&lon=-125.39&date=2021-01-15&half_width=5")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["midnight_lo"], ShouldEqual, "8h20m0s")
			So(body["midnight_hi"], ShouldEqual, "8h30m0s")
			So(body["day_of_year"], ShouldEqual, 15.0)
		})

		Convey("Then bands without coordinates are rejected", func() {
			So(get(mux, "/bands?date=2021-01-15").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
