package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/yaculator/internal/adapters/http/api"
	"github.com/okian/yaculator/internal/adapters/http/swagger"
	"github.com/okian/yaculator/internal/adapters/schedule"
	"github.com/okian/yaculator/internal/adapters/tables"
	service "github.com/okian/yaculator/internal/app"
	"github.com/okian/yaculator/internal/config"
	"github.com/okian/yaculator/internal/domain/blend"
	"github.com/okian/yaculator/pkg/logger"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var errQC = errors.New("input tables failed quality checks")

func runSeason(ctx context.Context, cfg *config.Config, out io.Writer) error {
	svc, err := loadService(ctx, cfg)
	if err != nil {
		return err
	}
	rep, err := svc.RunSeason(ctx)
	if err != nil {
		return err
	}
	resultsPath := cfg.DataPath(cfg.OutputFile)
	if err := tables.WriteResultsFile(resultsPath, rep.Results); err != nil {
		return err
	}
	summaryPath := cfg.DataPath(cfg.SummaryFile)
	if err := tables.WriteSummariesFile(summaryPath, rep.Summaries); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "run %s: %d projections over %d weeks -> %s, %s\n",
		rep.RunID, len(rep.Results), len(rep.Weeks), resultsPath, summaryPath)
	reportMissing(out, rep)
	return nil
}

// reportMissing lists the (week, team) pairs whose receivers had no game.
func reportMissing(out io.Writer, rep *service.SeasonReport) {
	if len(rep.Missing) == 0 {
		return
	}
	logger.Get().Named("cli").Warn(context.Background(), "receivers without a matchup",
		logger.String("run_id", rep.RunID),
		logger.Int("pairs", len(rep.Missing)),
	)
	_, _ = fmt.Fprintf(out, "no matchup for %d team-weeks:\n", len(rep.Missing))
	for _, m := range rep.Missing {
		_, _ = fmt.Fprintf(out, "  week %d %s\n", m.Week, m.Team)
	}
}

func runWeek(ctx context.Context, cfg *config.Config, week int, out io.Writer) error {
	svc, err := loadService(ctx, cfg)
	if err != nil {
		return err
	}
	rep, err := svc.RunWeek(ctx, week)
	if err != nil {
		return err
	}
	path := cfg.DataPath(cfg.WeekOutputFile)
	if err := tables.WriteResultsFile(path, rep.Results); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "run %s: week %d, %d projections -> %s\n", rep.RunID, week, len(rep.Results), path)
	reportMissing(out, rep)
	return nil
}

// newMux registers the API and its documentation.
func newMux(cfg *config.Config, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(svc, svc, api.WithMaxLimit(cfg.MaxProjectionsLimit)).Register(mux)
	return mux
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Get().Named("server")
	svc, err := loadService(ctx, cfg)
	if err != nil {
		return err
	}
	if _, err := svc.RunSeason(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

func runQC(cfg *config.Config, out io.Writer) error {
	p := paths(cfg)
	checks := tables.CheckFiles(p.Schedule, p.Receivers, p.Defenders, p.Coverage, p.Stadiums)
	for _, c := range checks {
		line := fmt.Sprintf("%-8s %6d rows  %s", c.Status, c.Rows, c.Path)
		if c.Err != nil {
			line += "  (" + c.Err.Error() + ")"
		}
		_, _ = fmt.Fprintln(out, line)
	}
	if !tables.AllOK(checks) {
		return errQC
	}
	return nil
}

func runBlend(cfg *config.Config, out io.Writer) error {
	if len(cfg.BlendInputs) == 0 {
		return fmt.Errorf("%w: blend_inputs is empty", config.ErrInvalidConfig)
	}
	ts := make([]blend.Table, 0, len(cfg.BlendInputs))
	for _, name := range cfg.BlendInputs {
		t, err := tables.ReadTable(cfg.DataPath(name))
		if err != nil {
			return err
		}
		ts = append(ts, t)
	}
	blended, err := blend.Blend(ts, cfg.BlendWeights, cfg.BlendKey)
	if err != nil {
		return err
	}
	path := cfg.DataPath(cfg.BlendOutput)
	if err := tables.WriteTable(path, blended); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "blended %d tables, %d rows -> %s\n", len(ts), blended.Len(), path)
	return nil
}

func runSchedule(ctx context.Context, cfg *config.Config, season int, path string, out io.Writer) error {
	s := schedule.New(
		schedule.WithBaseURL(cfg.ScheduleBaseURL),
		schedule.WithUserAgent(cfg.ScheduleUserAgent),
		schedule.WithRate(cfg.ScheduleRate),
		schedule.WithLogger(logger.Get()),
	)
	games, err := s.Fetch(ctx, season)
	if err != nil {
		return err
	}
	if err := tables.WriteScheduleFile(path, games); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "season %d: %d games -> %s\n", season, len(games), path)
	return nil
}
