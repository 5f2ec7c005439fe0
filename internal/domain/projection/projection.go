// Package projection turns resolved matchups into adjusted point estimates.
//
// The estimate is built in two stages. Estimate blends the receiver's role
// usage against the opponent's role penalties. Finish then applies recent
// form and the environment boost, optionally samples an uncertainty band, and
// records the week in the receiver's history. Splitting the stages lets the
// season runner compute estimates for all weeks in parallel and still apply
// form strictly in week order per receiver.
package projection

import (
	"fmt"

	"github.com/okian/yaculator/internal/domain/alignment"
	"github.com/okian/yaculator/internal/domain/matchup"
	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/internal/domain/penalty"
	"github.com/okian/yaculator/internal/domain/uncertainty"
	"github.com/okian/yaculator/pkg/metrics"
)

// Recent-form baseline and scale: every point above formBaseline over the
// trailing window adds 1/formScale to the multiplier.
const (
	formBaseline = 10.0
	formScale    = 30.0
)

// NeutralBoost is the environment multiplier when no boost is known.
const NeutralBoost = 1.0

// EnvironmentLookup supplies weather/stadium boosts by (week, team).
// model.EnvironmentMap and model.BoostMap both implement it.
type EnvironmentLookup interface {
	Boost(week int, team string) (float64, bool)
}

// Estimate is a matchup's projection before form and environment.
type Estimate struct {
	Matchup   matchup.Context
	Penalties model.RoleWeights
	BaseRate  float64
	Points    float64
}

// Engine projects receivers against resolved matchups.
type Engine struct {
	mode    alignment.Mode
	cache   *penalty.Cache
	env     EnvironmentLookup
	sampler uncertainty.Sampler
	seed    int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMode selects soft or hard alignment for penalty aggregation.
func WithMode(m alignment.Mode) Option {
	return func(e *Engine) {
		e.mode = m
	}
}

// WithPenaltyCache reuses aggregated penalties across receivers facing the
// same opponent.
func WithPenaltyCache(c *penalty.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithEnvironment sets the weather/stadium boost lookup.
func WithEnvironment(env EnvironmentLookup) Option {
	return func(e *Engine) {
		e.env = env
	}
}

// WithSampler enables Monte Carlo bands.
func WithSampler(s uncertainty.Sampler) Option {
	return func(e *Engine) {
		e.sampler = s
	}
}

// WithSeed sets the run seed for Monte Carlo draws.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// NewEngine builds an engine. Defaults: soft alignment, no cache, no
// environment, no sampling.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{mode: alignment.Soft}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BaseRate returns the receiver's fantasy points per target against the
// matchup's scheme: the man split for man, the zone split otherwise.
func BaseRate(m matchup.Context) float64 {
	if m.Scheme == model.Man {
		return m.Receiver.VsMan.FantasyPointsPerTarget
	}
	return m.Receiver.VsZone.FantasyPointsPerTarget
}

// Blend returns Σ w[r]·(1−p[r]) / Σ w[r]. Weights that sum to zero are a
// data defect upstream and are reported, not repaired.
func Blend(weights, penalties model.RoleWeights) (float64, error) {
	total := weights.Sum()
	if total == 0 {
		return 0, model.ErrDegenerateUsageWeights
	}
	var num float64
	for _, r := range model.Roles {
		num += weights[r] * (1 - penalties[r])
	}
	return num / total, nil
}

// RecentForm returns 1 + (mean(window) − 10)/30, or 1 for an empty window.
func RecentForm(window []float64) float64 {
	if len(window) == 0 {
		return 1.0
	}
	var sum float64
	for _, v := range window {
		sum += v
	}
	return 1 + (sum/float64(len(window))-formBaseline)/formScale
}

// Penalties returns the opponent's role penalties for m.
func (e *Engine) Penalties(m matchup.Context) model.RoleWeights {
	if e.cache != nil {
		return e.cache.Get(m.Opponent, e.mode, m.Pool)
	}
	return penalty.Aggregate(m.Pool, e.mode)
}

// Estimate computes the pre-multiplier projection for m. When precomputed is
// non-nil its penalties are used instead of aggregating m.Pool.
func (e *Engine) Estimate(m matchup.Context, precomputed *model.RoleWeights) (Estimate, error) {
	var p model.RoleWeights
	if precomputed != nil {
		p = *precomputed
	} else {
		p = e.Penalties(m)
	}
	blend, err := Blend(m.Receiver.Weights, p)
	if err != nil {
		return Estimate{}, fmt.Errorf("receiver %s week %d: %w", m.Receiver.Name, m.Week, err)
	}
	rate := BaseRate(m)
	return Estimate{
		Matchup:   m,
		Penalties: p,
		BaseRate:  rate,
		Points:    rate * blend,
	}, nil
}

// Environment returns the boost for the opponent's game in week.
func (e *Engine) Environment(week int, opponent string) float64 {
	if e.env == nil {
		return NeutralBoost
	}
	if b, ok := e.env.Boost(week, opponent); ok {
		return b
	}
	return NeutralBoost
}

// Finish applies recent form and environment to est, samples a band when
// enabled, and records the adjusted points in h. A nil h disables form.
func (e *Engine) Finish(est Estimate, h *History) (model.Result, error) {
	m := est.Matchup
	rec := m.Receiver

	adjusted := est.Points
	adjusted *= RecentForm(h.Window(rec.Name, m.Week))
	env := e.Environment(m.Week, m.Opponent)
	adjusted *= env

	var band *model.Band
	if e.sampler.Enabled() {
		b, ok := e.sampler.Percentiles(adjusted, uncertainty.RandFor(e.seed, rec.Name, m.Week))
		if ok {
			band = &b
		}
	}

	if h != nil {
		if err := h.Record(rec.Name, m.Week, adjusted); err != nil {
			return model.Result{}, err
		}
	}

	metrics.RecordProjection(m.Scheme.String())
	return model.NewResult(m.Week, rec, m.Opponent, m.Scheme, est.BaseRate, adjusted, env, band), nil
}

// Project runs Estimate and Finish in one step.
func (e *Engine) Project(m matchup.Context, h *History, precomputed *model.RoleWeights) (model.Result, error) {
	est, err := e.Estimate(m, precomputed)
	if err != nil {
		return model.Result{}, err
	}
	return e.Finish(est, h)
}
