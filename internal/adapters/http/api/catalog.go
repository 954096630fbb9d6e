package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/profilemeta/internal/domain/calendar"
	"github.com/okian/profilemeta/internal/domain/sensors"
	"github.com/okian/profilemeta/internal/domain/solarbands"
)

// CatalogDependencies defines the interface for reference data.
type CatalogDependencies interface {
	Sensors() ([]sensors.Sensor, error)
	Sensor(code string) (sensors.Sensor, error)
	SuggestBands(lat, lon float64, date time.Time, halfWidth time.Duration) (solarbands.Suggestion, error)
}

// CatalogHandler serves the sensor catalog and band suggestions.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGetSensors handles GET /sensors[?schedule=].
func (h *CatalogHandler) HandleGetSensors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	all, err := h.deps.Sensors()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sched := r.URL.Query().Get("schedule"); sched != "" {
		filtered := []sensors.Sensor{}
		for _, s := range all {
			if string(s.Schedule) == sched {
				filtered = append(filtered, s)
			}
		}
		all = filtered
	}
	writeJSON(w, http.StatusOK, all)
}

// HandleGetSensor handles GET /sensors/{code}.
func (h *CatalogHandler) HandleGetSensor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	code := strings.TrimPrefix(r.URL.Path, "/sensors/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	s, err := h.deps.Sensor(code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleGetBands handles GET /bands?lat=&lon=&date=[&half_width=minutes].
func (h *CatalogHandler) HandleGetBands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	lat, err := floatParam(q, "lat")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	lon, err := floatParam(q, "lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	date, err := dateParam(q, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	half, err := intParamDefault(q, "half_width", int(solarbands.DefaultHalfWidth/time.Minute))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sg, err := h.deps.SuggestBands(lat, lon, date, time.Duration(half)*time.Minute)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bandsResponse{
		Date:          date.Format(time.DateOnly),
		DayOfYear:     calendar.DayOfYear(date),
		MidnightLo:    sg.Bands.Midnight.Lo.String(),
		MidnightHi:    sg.Bands.Midnight.Hi.String(),
		NoonLo:        sg.Bands.Noon.Lo.String(),
		NoonHi:        sg.Bands.Noon.Hi.String(),
		SolarNoon:     sg.SolarNoon,
		SolarMidnight: sg.SolarMidnight,
	})
}

type bandsResponse struct {
	Date          string    `json:"date"`
	DayOfYear     int       `json:"day_of_year"`
	MidnightLo    string    `json:"midnight_lo"`
	MidnightHi    string    `json:"midnight_hi"`
	NoonLo        string    `json:"noon_lo"`
	NoonHi        string    `json:"noon_hi"`
	SolarNoon     time.Time `json:"solar_noon"`
	SolarMidnight time.Time `json:"solar_midnight"`
}
