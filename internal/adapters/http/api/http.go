// Package api serves the published projections over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/yaculator/internal/adapters/repository"
	"github.com/okian/yaculator/internal/domain/model"
)

const (
	defaultLimit    = 25
	defaultMaxLimit = 500
)

// Dependencies are the read operations the handlers need.
type Dependencies interface {
	TopN(ctx context.Context, week, n int) ([]repository.Entry, error)
	Rank(ctx context.Context, receiver string, week int) (repository.Entry, error)
	Summaries(ctx context.Context) []model.TeamSummary
	Weeks(ctx context.Context) []int
}

// Server wires HTTP routes for the projection API.
type Server struct {
	health      *HealthHandler
	stats       *StatsHandler
	projections *ProjectionsHandler
	rank        *RankHandler
	summary     *SummaryHandler
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxLimit int
}

// WithMaxLimit caps the limit accepted by /projections.
func WithMaxLimit(n int) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		health:      NewHealthHandler(),
		stats:       NewStatsHandler(statsProvider),
		projections: NewProjectionsHandler(deps, o.maxLimit),
		rank:        NewRankHandler(deps),
		summary:     NewSummaryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.health.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.stats.HandleStats, "stats"))
	mux.HandleFunc("/projections", MetricsMiddleware(s.projections.HandleGetProjections, "projections"))
	mux.HandleFunc("/weeks", MetricsMiddleware(s.projections.HandleGetWeeks, "weeks"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rank.HandleGetRank, "rank"))
	mux.HandleFunc("/summary", MetricsMiddleware(s.summary.HandleGetSummary, "summary"))
}

// projection is the JSON shape of one ranked result.
type projection struct {
	Rank      int      `json:"rank"`
	Of        int      `json:"of"`
	Week      int      `json:"week"`
	Receiver  string   `json:"receiver"`
	Team      string   `json:"team"`
	Opponent  string   `json:"opponent"`
	Scheme    string   `json:"scheme"`
	BasePts   float64  `json:"base_pts"`
	AdjPts    float64  `json:"adj_pts"`
	SlotW     float64  `json:"slot_weight"`
	WideW     float64  `json:"wide_weight"`
	SafetyW   float64  `json:"safety_weight"`
	LinebackW float64  `json:"lb_weight"`
	EnvBoost  float64  `json:"env_boost"`
	P25       *float64 `json:"adj_pts_p25,omitempty"`
	P50       *float64 `json:"adj_pts_p50,omitempty"`
	P75       *float64 `json:"adj_pts_p75,omitempty"`
}

func toProjection(e repository.Entry) projection {
	r := e.Result
	p := projection{
		Rank:      e.Rank,
		Of:        e.Of,
		Week:      r.Week,
		Receiver:  r.Receiver,
		Team:      r.Team,
		Opponent:  r.Opponent,
		Scheme:    r.Scheme.String(),
		BasePts:   r.BasePoints,
		AdjPts:    r.AdjustedPoints,
		SlotW:     r.SlotWeight,
		WideW:     r.WideWeight,
		SafetyW:   r.SafetyWeight,
		LinebackW: r.LinebackerWeight,
		EnvBoost:  r.EnvBoost,
	}
	if r.Sampled {
		p25, p50, p75 := r.Band.P25, r.Band.P50, r.Band.P75
		p.P25, p.P50, p.P75 = &p25, &p50, &p75
	}
	return p
}

type summary struct {
	Team          string  `json:"team"`
	Count         int     `json:"count"`
	TotalAdjusted float64 `json:"total_adj_pts"`
	MeanAdjusted  float64 `json:"avg_adj_pts"`
	MeanMedian    float64 `json:"avg_median_pts"`
	MeanBase      float64 `json:"avg_base_pts"`
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

// weekParam reads ?week=N. When absent it falls back to the first published
// week; ok is false after an error response has been written.
func weekParam(w http.ResponseWriter, r *http.Request, deps Dependencies, required bool) (int, bool) {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		if required {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: week is required", ErrBadRequest))
			return 0, false
		}
		weeks := deps.Weeks(r.Context())
		if len(weeks) == 0 {
			writeError(w, http.StatusNotFound, "not_found", ErrNoResults)
			return 0, false
		}
		return weeks[0], true
	}
	week, err := strconv.Atoi(raw)
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid week %q", ErrBadRequest, raw))
		return 0, false
	}
	return week, true
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
