// Package service wires inputs, the projection engine and the result store
// behind the operations used by the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/okian/yaculator/internal/adapters/repository"
	"github.com/okian/yaculator/internal/adapters/tables"
	"github.com/okian/yaculator/internal/domain/alignment"
	"github.com/okian/yaculator/internal/domain/matchup"
	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/internal/domain/penalty"
	"github.com/okian/yaculator/internal/domain/projection"
	"github.com/okian/yaculator/internal/domain/uncertainty"
	"github.com/okian/yaculator/internal/domain/weather"
	"github.com/okian/yaculator/pkg/logger"
)

// Paths names the input tables. An empty Stadiums path disables
// environment boosts.
type Paths struct {
	Schedule  string
	Receivers string
	Defenders string
	Coverage  string
	Stadiums  string
}

// Inputs are the read-only tables a run projects over.
type Inputs struct {
	Schedule  *model.Schedule
	Receivers []model.Receiver
	Defenders []model.Defender
	Schemes   *matchup.SchemeMap
	Stadiums  []weather.Stadium
}

// Service runs projections and serves the latest results.
type Service struct {
	mu     sync.RWMutex
	inputs *Inputs

	store   repository.Store
	reports reportCache

	workers    int
	queueSize  int
	mode       alignment.Mode
	defaultMan bool
	mult       model.WeightMultipliers
	sampler    uncertainty.Sampler
	seed       int64
	phase      weather.Phase
	forceDome  bool
	forecaster weather.Forecaster
	maxLimit   int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workers = count
		}
	}
}

// WithQueueSize bounds the number of tasks waiting for a worker.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithAlignmentMode selects soft or hard defender alignment.
func WithAlignmentMode(m alignment.Mode) Option {
	return func(s *Service) {
		s.mode = m
	}
}

// WithDefaultManBlend treats untagged opponents as man coverage.
func WithDefaultManBlend(enabled bool) Option {
	return func(s *Service) {
		s.defaultMan = enabled
	}
}

// WithWeightMultipliers sets the role usage multipliers applied at load.
func WithWeightMultipliers(m model.WeightMultipliers) Option {
	return func(s *Service) {
		s.mult = m
	}
}

// WithSampler configures Monte Carlo bands. A count of zero disables them.
func WithSampler(count int, stdDev float64) Option {
	return func(s *Service) {
		s.sampler = uncertainty.Sampler{Count: count, StdDev: stdDev}
	}
}

// WithSeed sets the run seed for Monte Carlo draws.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithClimatePhase sets the climate phase for climatology estimates.
func WithClimatePhase(p weather.Phase) Option {
	return func(s *Service) {
		s.phase = p
	}
}

// WithForceDome gives dome venues the fixed dome boost.
func WithForceDome(force bool) Option {
	return func(s *Service) {
		s.forceDome = force
	}
}

// WithForecaster enables forecast lookups for outdoor games.
func WithForecaster(f weather.Forecaster) Option {
	return func(s *Service) {
		s.forecaster = f
	}
}

// WithMaxProjections caps the n accepted by TopN on the default store. It
// has no effect when WithStore supplies the store.
func WithMaxProjections(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithStore replaces the result store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workers:    runtime.NumCPU(),
		queueSize:  1024,
		mode:       alignment.Soft,
		defaultMan: true,
		mult:       model.DefaultWeightMultipliers(),
		sampler:    uncertainty.Sampler{Count: uncertainty.DefaultCount, StdDev: uncertainty.DefaultStdDev},
		seed:       1,
		phase:      weather.Neutral,
		forceDome:  true,
		logger:     logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithMaxLimit(s.maxLimit))
	}
	s.logger = s.logger.Named("service")
	return s
}

// Load reads the input tables. Rejected rows are logged and skipped; a
// missing or malformed table fails the load.
func (s *Service) Load(ctx context.Context, p Paths) error {
	games, rep, err := tables.LoadSchedule(p.Schedule)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	s.logReport(ctx, rep)

	receivers, rep, err := tables.LoadReceivers(p.Receivers, s.mult)
	if err != nil {
		return fmt.Errorf("load receivers: %w", err)
	}
	s.logReport(ctx, rep)

	defenders, rep, err := tables.LoadDefenders(p.Defenders)
	if err != nil {
		return fmt.Errorf("load defenders: %w", err)
	}
	s.logReport(ctx, rep)

	schemes, rep, err := tables.LoadCoverage(p.Coverage)
	if err != nil {
		return fmt.Errorf("load coverage: %w", err)
	}
	s.logReport(ctx, rep)

	var stadiums []weather.Stadium
	if p.Stadiums != "" {
		stadiums, rep, err = tables.LoadStadiums(p.Stadiums)
		if err != nil {
			return fmt.Errorf("load stadiums: %w", err)
		}
		s.logReport(ctx, rep)
	}

	s.SetInputs(&Inputs{
		Schedule:  model.NewSchedule(games),
		Receivers: receivers,
		Defenders: defenders,
		Schemes:   schemes,
		Stadiums:  stadiums,
	})
	return nil
}

func (s *Service) logReport(ctx context.Context, rep tables.Report) {
	s.logger.Info(ctx, "table loaded",
		logger.String("table", rep.Table),
		logger.Int("rows", rep.Loaded),
		logger.Int("rejected", rep.Rejected),
	)
	for _, err := range rep.Errors {
		s.logger.Warn(ctx, "row rejected", logger.String("table", rep.Table), logger.Error(err))
	}
}

// SetInputs installs already-loaded inputs.
func (s *Service) SetInputs(in *Inputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = in
}

func (s *Service) currentInputs() (*Inputs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inputs == nil {
		return nil, ErrNotLoaded
	}
	return s.inputs, nil
}

// Environment builds the per-game environment map of the loaded schedule.
func (s *Service) Environment(ctx context.Context) (model.EnvironmentMap, error) {
	in, err := s.currentInputs()
	if err != nil {
		return nil, err
	}
	return s.environment(ctx, in), nil
}

func (s *Service) environment(ctx context.Context, in *Inputs) model.EnvironmentMap {
	if len(in.Stadiums) == 0 {
		return nil
	}
	opts := []weather.Option{
		weather.WithPhase(s.phase),
		weather.WithForceDome(s.forceDome),
		weather.WithLogger(s.logger),
	}
	if s.forecaster != nil {
		opts = append(opts, weather.WithForecaster(s.forecaster))
	}
	return weather.NewBuilder(in.Stadiums, opts...).Build(ctx, in.Schedule)
}

func (s *Service) newRunner(ctx context.Context, in *Inputs) *runner {
	engine := projection.NewEngine(
		projection.WithMode(s.mode),
		projection.WithPenaltyCache(penalty.NewCache()),
		projection.WithEnvironment(s.environment(ctx, in)),
		projection.WithSampler(s.sampler),
		projection.WithSeed(s.seed),
	)
	resolver := matchup.NewResolver(
		in.Schedule,
		matchup.GroupDefenders(in.Defenders),
		in.Schemes,
		matchup.WithDefaultManBlend(s.defaultMan),
	)
	return &runner{
		engine:    engine,
		resolver:  resolver,
		workers:   s.workers,
		queueSize: s.queueSize,
		logger:    s.logger,
	}
}

// RunSeason projects every receiver over every scheduled week and publishes
// the results to the store.
func (s *Service) RunSeason(ctx context.Context) (*SeasonReport, error) {
	in, err := s.currentInputs()
	if err != nil {
		return nil, err
	}
	return s.publish(ctx, KindSeason, in, in.Schedule.Weeks())
}

// RunWeek projects a single week with no prior form.
func (s *Service) RunWeek(ctx context.Context, week int) (*SeasonReport, error) {
	in, err := s.currentInputs()
	if err != nil {
		return nil, err
	}
	found := false
	for _, w := range in.Schedule.Weeks() {
		if w == week {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWeek, week)
	}
	return s.publish(ctx, KindWeek, in, []int{week})
}

func (s *Service) publish(ctx context.Context, kind string, in *Inputs, weeks []int) (*SeasonReport, error) {
	rep, err := s.newRunner(ctx, in).run(ctx, kind, in.Receivers, weeks)
	if err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, rep.Results, rep.Summaries); err != nil {
		return nil, fmt.Errorf("publish results: %w", err)
	}
	s.reports.put(rep)
	return rep, nil
}

// Report returns the latest report of kind.
func (s *Service) Report(kind string) (*SeasonReport, bool) {
	return s.reports.get(kind)
}

// TopN returns the week's top n projections.
func (s *Service) TopN(ctx context.Context, week, n int) ([]repository.Entry, error) {
	return s.store.TopN(ctx, week, n)
}

// Rank returns one receiver's ranked projection for week.
func (s *Service) Rank(ctx context.Context, receiver string, week int) (repository.Entry, error) {
	return s.store.Rank(ctx, receiver, week)
}

// Summaries returns the team summaries of the published run.
func (s *Service) Summaries(ctx context.Context) []model.TeamSummary {
	return s.store.Summaries(ctx)
}

// Weeks returns the weeks of the published run.
func (s *Service) Weeks(ctx context.Context) []int {
	return s.store.Weeks(ctx)
}

// IsNotFound reports whether err means a missing receiver-week.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	stats := map[string]interface{}{
		"workerCount":    s.workers,
		"queueSize":      s.queueSize,
		"alignmentMode":  s.mode.String(),
		"simulations":    s.sampler.Count,
		"forecast":       s.forecaster != nil,
		"projections":    s.store.Count(ctx),
		"publishedWeeks": len(s.store.Weeks(ctx)),
	}

	s.mu.RLock()
	in := s.inputs
	s.mu.RUnlock()
	stats["loaded"] = in != nil
	if in != nil {
		stats["games"] = in.Schedule.Len()
		stats["receivers"] = len(in.Receivers)
		stats["defenders"] = len(in.Defenders)
		stats["coverageTags"] = in.Schemes.Len()
		stats["stadiums"] = len(in.Stadiums)
	}
	if rep, ok := s.reports.get(KindSeason); ok {
		stats["lastRunId"] = rep.RunID
		stats["lastRunMissing"] = len(rep.Missing)
		stats["lastRunDuration"] = rep.Duration.String()
	}
	return stats
}
