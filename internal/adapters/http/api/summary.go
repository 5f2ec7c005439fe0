package api

import (
	"net/http"

	"github.com/okian/yaculator/internal/domain/model"
)

// SummaryHandler serves team summaries of the published run.
type SummaryHandler struct {
	deps Dependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps Dependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /summary.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sums := h.deps.Summaries(r.Context())
	out := make([]summary, 0, len(sums))
	for _, s := range sums {
		out = append(out, summary{
			Team:          s.Team,
			Count:         s.Count,
			TotalAdjusted: model.Round(s.TotalAdjusted, 2),
			MeanAdjusted:  model.Round(s.MeanAdjusted, 2),
			MeanMedian:    model.Round(s.MeanMedian, 2),
			MeanBase:      model.Round(s.MeanBase, 2),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
