package api

import (
	"context"
	"net/http"

	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/internal/domain/selector"
)

// defaultNearestWindow is the ± minute window of /nearest when none is given.
const defaultNearestWindow = 10

// WindowDependencies defines the interface for window queries.
type WindowDependencies interface {
	SelectWindow(ctx context.Context, site string, year int, w selector.Window) ([]int, *model.Table, error)
	FindNearest(ctx context.Context, site string, year int, target string, windowMinutes int) ([]int, *model.Table, error)
}

// WindowsHandler handles /windows and /nearest.
type WindowsHandler struct {
	deps WindowDependencies
}

// NewWindowsHandler creates a new windows handler.
func NewWindowsHandler(deps WindowDependencies) *WindowsHandler {
	return &WindowsHandler{deps: deps}
}

type windowResponse struct {
	Site    string              `json:"site"`
	Year    int                 `json:"year"`
	Count   int                 `json:"count"`
	Indices []int               `json:"indices"`
	Records []model.CycleRecord `json:"records"`
}

func newWindowResponse(t *model.Table, idx []int) windowResponse {
	return windowResponse{
		Site:    t.Site(),
		Year:    t.Year(),
		Count:   len(idx),
		Indices: idx,
		Records: t.Pick(idx),
	}
}

// HandleGetWindows handles GET /windows?site=&year=&date0=&date1=&time0=&time1=.
// time0 and time1 are minutes since UTC midnight or HH:MM.
func (h *WindowsHandler) HandleGetWindows(w http.ResponseWriter, r *http.Request) {
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
	var win selector.Window
	if win.Date0, err = dateParam(q, "date0"); err == nil {
		if win.Date1, err = dateParam(q, "date1"); err == nil {
			if win.Time0, err = minutesParam(q, "time0"); err == nil {
				win.Time1, err = minutesParam(q, "time1")
			}
		}
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	idx, t, err := h.deps.SelectWindow(r.Context(), site, year, win)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWindowResponse(t, idx))
}

// HandleGetNearest handles GET /nearest?site=&year=&target=&window=.
func (h *WindowsHandler) HandleGetNearest(w http.ResponseWriter, r *http.Request) {
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
	target, err := required(q, "target")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	window, err := intParamDefault(q, "window", defaultNearestWindow)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	idx, t, err := h.deps.FindNearest(r.Context(), site, year, target, window)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWindowResponse(t, idx))
}
