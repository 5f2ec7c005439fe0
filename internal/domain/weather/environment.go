package weather

import (
	"context"
	"strings"

	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/pkg/logger"
	"github.com/okian/yaculator/pkg/metrics"
)

// Forecaster looks up a forecast boost for a venue on a date. It must fail
// open: on any error it returns a neutral boost labelled Unavailable.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, date string) model.Environment
}

// Builder turns a schedule into an environment map.
type Builder struct {
	stadiums   map[string]Stadium
	phase      Phase
	forecaster Forecaster
	forceDome  bool
	logger     logger.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithPhase sets the climate phase for climatology estimates.
func WithPhase(p Phase) Option {
	return func(b *Builder) {
		if p != "" {
			b.phase = p
		}
	}
}

// WithForecaster enables forecast lookups for outdoor venues.
func WithForecaster(f Forecaster) Option {
	return func(b *Builder) {
		b.forecaster = f
	}
}

// WithForceDome controls whether domed venues short-circuit to the dome
// boost. When disabled, domes go through the forecast path like any venue.
func WithForceDome(force bool) Option {
	return func(b *Builder) {
		b.forceDome = force
	}
}

// WithLogger sets the builder's logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder indexes stadiums by team. Later duplicates are ignored.
func NewBuilder(stadiums []Stadium, opts ...Option) *Builder {
	b := &Builder{
		stadiums:  make(map[string]Stadium, len(stadiums)),
		phase:     Neutral,
		forceDome: true,
		logger:    logger.Get(),
	}
	for _, s := range stadiums {
		team := strings.TrimSpace(s.Team)
		if _, dup := b.stadiums[team]; !dup {
			b.stadiums[team] = s
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.Named("weather")
	return b
}

// Game returns the environment of g, played at the home team's stadium.
func (b *Builder) Game(ctx context.Context, g model.Game) model.Environment {
	s, ok := b.stadiums[g.Home]
	switch {
	case !ok:
		metrics.RecordWeatherLookup("stadium", "unknown")
		return model.Environment{Boost: NeutralBoost, Condition: ConditionUnknown}
	case s.Dome && b.forceDome:
		metrics.RecordWeatherLookup("dome", "ok")
		return model.Environment{Boost: DomeBoost, Condition: ConditionDome}
	case b.forecaster != nil:
		env := b.forecaster.Forecast(ctx, s.Latitude, s.Longitude, g.Date)
		env.Boost = model.Round(env.Boost, 3)
		return env
	}
	metrics.RecordWeatherLookup("climatology", "ok")
	return model.Environment{Boost: Estimate(s, g.Week, b.phase), Condition: ConditionClimatology}
}

// Build computes the environment for every game in schedule. Both teams of a
// game share its venue conditions, so both (week, team) keys are recorded.
func (b *Builder) Build(ctx context.Context, schedule *model.Schedule) model.EnvironmentMap {
	env := make(model.EnvironmentMap)
	if schedule == nil {
		return env
	}
	for _, g := range schedule.Games() {
		if ctx.Err() != nil {
			b.logger.Warn(ctx, "environment build cancelled", logger.Int("games_done", len(env)/2))
			break
		}
		e := b.Game(ctx, g)
		env[model.WeekTeam{Week: g.Week, Team: g.Home}] = e
		env[model.WeekTeam{Week: g.Week, Team: g.Visitor}] = e
	}
	b.logger.Debug(ctx, "environment map built", logger.Int("entries", len(env)))
	return env
}
