package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/profilemeta/internal/domain/evaluation"
)

// EvaluateDependencies defines the interface for profile evaluation.
type EvaluateDependencies interface {
	Evaluate(ctx context.Context, site string, year int, t0, t1 time.Time) (evaluation.Report, error)
}

// EvaluateHandler handles /evaluate.
type EvaluateHandler struct {
	deps EvaluateDependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps EvaluateDependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

type evaluateResponse struct {
	Site string    `json:"site"`
	Year int       `json:"year"`
	T0   time.Time `json:"t0"`
	T1   time.Time `json:"t1"`
	evaluation.Report
}

// HandleGetEvaluate handles GET /evaluate?site=&year=&t0=&t1=.
func (h *EvaluateHandler) HandleGetEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	site, year, err := siteYear(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	t0, err := instantParam(q, "t0")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	t1, err := instantParam(q, "t1")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	rep, err := h.deps.Evaluate(r.Context(), site, year, t0, t1)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Site: site, Year: year, T0: t0, T1: t1, Report: rep})
}
