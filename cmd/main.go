package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/yaculator/internal/adapters/noaa"
	service "github.com/okian/yaculator/internal/app"
	"github.com/okian/yaculator/internal/config"
	"github.com/okian/yaculator/internal/domain/alignment"
	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/internal/domain/weather"
	"github.com/okian/yaculator/pkg/logger"
	"github.com/okian/yaculator/pkg/metrics"
)

const usage = `usage: yaculator <command> [flags]

commands:
  season              project every scheduled week (default)
  week -week N        project a single week with no prior form
  serve               run the season and serve the results over HTTP
  qc                  check that every input table exists and has rows
  blend               blend multi-season tables into one
  schedule -season Y  fetch a season schedule and write it as CSV
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		if errors.Is(err, errUsage) {
			_, _ = io.WriteString(os.Stderr, usage)
			os.Exit(2)
		}
		_, _ = io.WriteString(os.Stderr, "yaculator: "+err.Error()+"\n")
		os.Exit(1)
	}
}

// run dispatches one command. Configuration is loaded before the command's
// own flags are parsed, so flags override config.
func run(ctx context.Context, args []string, out io.Writer) error {
	cmd := "season"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if _, err := initMetrics(cfg); err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	switch cmd {
	case "season":
		return runSeason(ctx, cfg, out)
	case "week":
		fs := flag.NewFlagSet("week", flag.ContinueOnError)
		week := fs.Int("week", 1, "week number")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		return runWeek(ctx, cfg, *week, out)
	case "serve":
		return runServe(ctx, cfg)
	case "qc":
		return runQC(cfg, out)
	case "blend":
		return runBlend(cfg, out)
	case "schedule":
		fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
		season := fs.Int("season", cfg.Season, "season year")
		output := fs.String("out", "", "output CSV, defaults to the configured schedule file")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		path := *output
		if path == "" {
			path = cfg.DataPath(cfg.ScheduleFile)
		}
		return runSchedule(ctx, cfg, *season, path, out)
	case "help", "-h", "--help":
		_, _ = io.WriteString(out, usage)
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// initMetrics installs the global metrics manager described by cfg.
func initMetrics(cfg *config.Config) (*metrics.Manager, error) {
	labels, err := cfg.MetricLabels()
	if err != nil {
		return nil, err
	}
	return metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithCustomLabels(labels),
	), nil
}

// newService maps configuration onto service options.
func newService(cfg *config.Config) (*service.Service, error) {
	mode, err := alignment.ParseMode(cfg.AlignmentMode)
	if err != nil {
		return nil, err
	}
	phase, err := weather.ParsePhase(cfg.ClimatePhase)
	if err != nil {
		return nil, err
	}
	opts := []service.Option{
		service.WithLogger(logger.Get()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithMaxProjections(cfg.MaxProjectionsLimit),
		service.WithAlignmentMode(mode),
		service.WithDefaultManBlend(cfg.DefaultManZoneBlend),
		service.WithWeightMultipliers(model.WeightMultipliers{
			Slot:       cfg.SlotWeightMultiplier,
			Wide:       cfg.WideWeightMultiplier,
			Safety:     cfg.SafetyWeightMultiplier,
			Linebacker: cfg.LinebackerWeightMultiplier,
		}),
		service.WithSampler(cfg.Simulations, cfg.StdDev),
		service.WithSeed(cfg.Seed),
		service.WithClimatePhase(phase),
		service.WithForceDome(cfg.ForceDome),
	}
	if cfg.UseForecast {
		opts = append(opts, service.WithForecaster(noaa.New(
			noaa.WithBaseURL(cfg.WeatherBaseURL),
			noaa.WithTimeout(cfg.WeatherTimeout),
			noaa.WithRate(cfg.WeatherRate),
			noaa.WithUserAgent(cfg.WeatherUserAgent),
			noaa.WithLogger(logger.Get()),
		)))
	}
	return service.New(opts...), nil
}

func paths(cfg *config.Config) service.Paths {
	return service.Paths{
		Schedule:  cfg.DataPath(cfg.ScheduleFile),
		Receivers: cfg.DataPath(cfg.ReceiversFile),
		Defenders: cfg.DataPath(cfg.DefendersFile),
		Coverage:  cfg.DataPath(cfg.CoverageFile),
		Stadiums:  cfg.DataPath(cfg.StadiumsFile),
	}
}

// loadService builds a service and loads its input tables.
func loadService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	svc, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	if err := svc.Load(ctx, paths(cfg)); err != nil {
		return nil, err
	}
	return svc, nil
}
