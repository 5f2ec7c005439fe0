package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/yaculator/internal/adapters/mq/queue"
	"github.com/okian/yaculator/internal/adapters/mq/worker"
	"github.com/okian/yaculator/internal/domain/matchup"
	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/internal/domain/projection"
	"github.com/okian/yaculator/pkg/logger"
	"github.com/okian/yaculator/pkg/metrics"
)

// Run kinds used in logs and metrics.
const (
	KindSeason = "season"
	KindWeek   = "week"
)

// SeasonReport is the outcome of one run.
type SeasonReport struct {
	RunID     string
	Kind      string
	Weeks     []int
	Results   []model.Result
	Summaries []model.TeamSummary
	// Missing lists (week, team) pairs where a receiver's team had no game.
	Missing  []model.WeekTeam
	Duration time.Duration
}

// runner projects a set of receivers over a set of weeks.
//
// Pass one runs one task per week and computes every matchup's estimate.
// Pass two runs one task per receiver and finishes its weeks in ascending
// order, so recent form only ever reads earlier weeks and no receiver's
// history is written by two workers.
type runner struct {
	engine    *projection.Engine
	resolver  *matchup.Resolver
	workers   int
	queueSize int
	logger    logger.Logger
}

func (r *runner) run(ctx context.Context, kind string, receivers []model.Receiver, weeks []int) (*SeasonReport, error) {
	start := time.Now()
	rep := &SeasonReport{RunID: uuid.NewString(), Kind: kind, Weeks: append([]int(nil), weeks...)}
	ctx = logger.WithRunID(ctx, rep.RunID)

	r.logger.Info(ctx, "projection run started",
		logger.String("kind", kind),
		logger.Int("receivers", len(receivers)),
		logger.Int("weeks", len(weeks)),
		logger.Int("workers", r.workers),
	)

	err := r.project(ctx, rep, receivers, weeks)
	rep.Duration = time.Since(start)
	ms := float64(rep.Duration.Microseconds()) / 1000
	if err != nil {
		metrics.RecordRun(kind, "error", ms)
		r.logger.Error(ctx, "projection run failed", logger.Error(err))
		return nil, err
	}
	metrics.RecordRun(kind, "ok", ms)

	r.logger.Info(ctx, "projection run finished",
		logger.Int("results", len(rep.Results)),
		logger.Int("missing", len(rep.Missing)),
		logger.Duration("duration", rep.Duration),
	)
	return rep, nil
}

func (r *runner) project(ctx context.Context, rep *SeasonReport, receivers []model.Receiver, weeks []int) error {
	// estimates[w][i] is receiver i in weeks[w]; nil means no matchup.
	estimates := make([][]*projection.Estimate, len(weeks))
	missing := make([][]model.WeekTeam, len(weeks))

	tasks := make([]queue.Task, 0, len(weeks))
	for w, week := range weeks {
		tasks = append(tasks, queue.Task{
			Name: "estimate-week-" + strconv.Itoa(week),
			Run: func(ctx context.Context) error {
				row, gaps, err := r.estimateWeek(ctx, week, receivers)
				estimates[w], missing[w] = row, gaps
				return err
			},
		})
	}
	if err := r.execute(ctx, "estimate", tasks); err != nil {
		return fmt.Errorf("estimate: %w", err)
	}

	history := projection.NewHistory()
	perReceiver := make([][]model.Result, len(receivers))
	tasks = tasks[:0]
	for i := range receivers {
		tasks = append(tasks, queue.Task{
			Name: "finish-" + receivers[i].Name,
			Run: func(ctx context.Context) error {
				out, err := r.finishReceiver(ctx, i, estimates, history)
				perReceiver[i] = out
				return err
			},
		})
	}
	if err := r.execute(ctx, "finish", tasks); err != nil {
		return fmt.Errorf("finish: %w", err)
	}

	for _, out := range perReceiver {
		rep.Results = append(rep.Results, out...)
	}
	sortResults(rep.Results)
	rep.Summaries = projection.Summarize(rep.Results)
	for _, gaps := range missing {
		rep.Missing = append(rep.Missing, gaps...)
	}
	return nil
}

func (r *runner) execute(ctx context.Context, stage string, tasks []queue.Task) error {
	return worker.RunBounded(ctx, r.workers, r.queueSize, tasks,
		worker.WithName(stage),
		worker.WithLogger(r.logger),
		worker.WithStopOnError(true),
	)
}

func (r *runner) estimateWeek(ctx context.Context, week int, receivers []model.Receiver) ([]*projection.Estimate, []model.WeekTeam, error) {
	row := make([]*projection.Estimate, len(receivers))
	var gaps []model.WeekTeam
	seen := make(map[string]struct{})
	for i := range receivers {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rec := receivers[i]
		m, ok := r.resolver.Resolve(rec, week)
		if !ok {
			metrics.RecordMissingMatchup()
			if _, dup := seen[rec.Team]; !dup {
				seen[rec.Team] = struct{}{}
				gaps = append(gaps, model.WeekTeam{Week: week, Team: rec.Team})
				r.logger.Debug(ctx, "no matchup",
					logger.Int("week", week),
					logger.String("team", rec.Team),
				)
			}
			continue
		}
		est, err := r.engine.Estimate(m, nil)
		if err != nil {
			return nil, nil, err
		}
		row[i] = &est
	}
	return row, gaps, nil
}

func (r *runner) finishReceiver(ctx context.Context, i int, estimates [][]*projection.Estimate, h *projection.History) ([]model.Result, error) {
	var out []model.Result
	for w := range estimates {
		est := estimates[w][i]
		if est == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		res, err := r.engine.Finish(*est, h)
		if err != nil {
			return nil, err
		}
		metrics.RecordProjectionLatency(float64(time.Since(start).Microseconds()) / 1000)
		out = append(out, res)
	}
	return out, nil
}

// sortResults orders by week, team, then receiver.
func sortResults(results []model.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.Receiver < b.Receiver
	})
}

// reportCache keeps the latest report per kind.
type reportCache struct {
	mu      sync.RWMutex
	reports map[string]*SeasonReport
}

func (c *reportCache) put(r *SeasonReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reports == nil {
		c.reports = make(map[string]*SeasonReport)
	}
	c.reports[r.Kind] = r
}

func (c *reportCache) get(kind string) (*SeasonReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.reports[kind]
	return r, ok
}
