// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/profilemeta/internal/adapters/source"
	service "github.com/okian/profilemeta/internal/app"
	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/selector"
	"github.com/okian/profilemeta/internal/domain/sensors"
	"github.com/okian/profilemeta/internal/domain/solarbands"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SelectWindow(ctx context.Context, site string, year int, w selector.Window) ([]int, *model.Table, error)
	FindNearest(ctx context.Context, site string, year int, target string, windowMinutes int) ([]int, *model.Table, error)
	Evaluate(ctx context.Context, site string, year int, t0, t1 time.Time) (evaluation.Report, error)

	Sensors() ([]sensors.Sensor, error)
	Sensor(code string) (sensors.Sensor, error)
	SuggestBands(lat, lon float64, date time.Time, halfWidth time.Duration) (solarbands.Suggestion, error)
}

// Server wires HTTP routes for the query API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	windowsHandler  *WindowsHandler
	evaluateHandler *EvaluateHandler
	catalogHandler  *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		windowsHandler:  NewWindowsHandler(deps),
		evaluateHandler: NewEvaluateHandler(deps),
		catalogHandler:  NewCatalogHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/windows", MetricsMiddleware(RequestID(s.windowsHandler.HandleGetWindows), "windows"))
	mux.HandleFunc("/nearest", MetricsMiddleware(RequestID(s.windowsHandler.HandleGetNearest), "nearest"))
	mux.HandleFunc("/evaluate", MetricsMiddleware(RequestID(s.evaluateHandler.HandleGetEvaluate), "evaluate"))
	mux.HandleFunc("/sensors", MetricsMiddleware(s.catalogHandler.HandleGetSensors, "sensors"))
	mux.HandleFunc("/sensors/", MetricsMiddleware(s.catalogHandler.HandleGetSensor, "sensor"))
	mux.HandleFunc("/bands", MetricsMiddleware(s.catalogHandler.HandleGetBands, "bands"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and loader errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTarget),
		errors.Is(err, service.ErrInvalidCoordinates):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, source.ErrTableNotFound),
		errors.Is(err, sensors.ErrUnknownSensor):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, source.ErrSchema):
		writeError(w, http.StatusInternalServerError, "schema_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
