package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// RankHandler handles rank requests.
type RankHandler struct {
	deps Dependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank/{receiver}?week=N.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/rank/")
	receiver, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(receiver) == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: receiver name required", ErrBadRequest))
		return
	}
	week, ok := weekParam(w, r, h.deps, true)
	if !ok {
		return
	}
	entry, err := h.deps.Rank(r.Context(), receiver, week)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjection(entry))
}
