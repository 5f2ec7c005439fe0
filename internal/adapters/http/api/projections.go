package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// ProjectionsHandler serves ranked weekly projections.
type ProjectionsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewProjectionsHandler creates a new projections handler.
func NewProjectionsHandler(deps Dependencies, maxLimit int) *ProjectionsHandler {
	return &ProjectionsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetProjections handles GET /projections?week=N&limit=M.
func (h *ProjectionsHandler) HandleGetProjections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	week, ok := weekParam(w, r, h.deps, false)
	if !ok {
		return
	}

	n := min(defaultLimit, h.maxLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid limit %q", ErrBadRequest, raw))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit above %d", ErrBadRequest, h.maxLimit))
		return
	}

	entries, err := h.deps.TopN(r.Context(), week, n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	out := make([]projection, 0, len(entries))
	for _, e := range entries {
		out = append(out, toProjection(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetWeeks handles GET /weeks.
func (h *ProjectionsHandler) HandleGetWeeks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	weeks := h.deps.Weeks(r.Context())
	if weeks == nil {
		weeks = []int{}
	}
	writeJSON(w, http.StatusOK, weeks)
}
