// Package config defines process configuration and its loading hooks.
//
// Keys are flat so every option can be set from the environment with the
// YAC_ prefix, e.g. YAC_ALIGNMENT_MODE=hard.
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address for the serve command.
	Addr string `koanf:"addr"`
	// MaxProjectionsLimit caps GET /projections?limit.
	MaxProjectionsLimit int `koanf:"max_projections_limit"`

	// WorkerCount sets the number of projection workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the in-memory task queue.
	QueueSize int `koanf:"queue_size"`

	// Season is the schedule year.
	Season int `koanf:"season"`

	// Role usage multipliers applied when building receiver weights.
	SlotWeightMultiplier       float64 `koanf:"slot_weight_multiplier"`
	WideWeightMultiplier       float64 `koanf:"wide_weight_multiplier"`
	SafetyWeightMultiplier     float64 `koanf:"safety_weight_multiplier"`
	LinebackerWeightMultiplier float64 `koanf:"lb_weight_multiplier"`

	// DefaultManZoneBlend treats an untagged opponent as man coverage.
	DefaultManZoneBlend bool `koanf:"default_man_zone_blend"`
	// AlignmentMode is soft or hard.
	AlignmentMode string `koanf:"alignment_mode"`

	// Monte Carlo settings. Simulations of 0 disables sampling.
	Simulations int     `koanf:"simulations"`
	StdDev      float64 `koanf:"std_dev"`
	Seed        int64   `koanf:"seed"`

	// Input tables, resolved against DataDir when relative.
	DataDir       string `koanf:"data_dir"`
	ScheduleFile  string `koanf:"schedule_file"`
	ReceiversFile string `koanf:"receivers_file"`
	DefendersFile string `koanf:"defenders_file"`
	CoverageFile  string `koanf:"coverage_file"`
	StadiumsFile  string `koanf:"stadiums_file"`

	// Output tables.
	OutputFile     string `koanf:"output_file"`
	WeekOutputFile string `koanf:"week_output_file"`
	SummaryFile    string `koanf:"summary_file"`

	// Multi-season blending: inputs newest first, one weight per input.
	BlendWeights []float64 `koanf:"blend_weights"`
	BlendInputs  []string  `koanf:"blend_inputs"`
	BlendKey     string    `koanf:"blend_key"`
	BlendOutput  string    `koanf:"blend_output"`

	// Environment boosts.
	ClimatePhase      string        `koanf:"climate_phase"`
	ForceDome         bool          `koanf:"force_dome"`
	UseForecast       bool          `koanf:"use_forecast_weather"`
	WeatherBaseURL    string        `koanf:"weather_base_url"`
	WeatherTimeout    time.Duration `koanf:"weather_timeout"`
	WeatherRate       float64       `koanf:"weather_rate"`
	WeatherUserAgent  string        `koanf:"weather_user_agent"`
	ScheduleBaseURL   string        `koanf:"schedule_base_url"`
	ScheduleRate      float64       `koanf:"schedule_rate"`
	ScheduleUserAgent string        `koanf:"schedule_user_agent"`

	// Prometheus metrics. Labels are key=value pairs attached to every series.
	MetricsEnabled   bool      `koanf:"metrics_enabled"`
	MetricsNamespace string    `koanf:"metrics_namespace"`
	MetricsSubsystem string    `koanf:"metrics_subsystem"`
	MetricsBuckets   []float64 `koanf:"metrics_buckets"`
	MetricsLabels    []string  `koanf:"metrics_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                   "info",
		LogFormat:                  "text",
		Addr:                       ":9080",
		MaxProjectionsLimit:        500,
		WorkerCount:                runtime.NumCPU(),
		QueueSize:                  1024,
		Season:                     2025,
		SlotWeightMultiplier:       1.0,
		WideWeightMultiplier:       1.0,
		SafetyWeightMultiplier:     0.2,
		LinebackerWeightMultiplier: 0.1,
		DefaultManZoneBlend:        true,
		AlignmentMode:              "soft",
		Simulations:                100,
		StdDev:                     2.0,
		Seed:                       1,
		DataDir:                    "data",
		ScheduleFile:               "NFL_SCHEDULE_2025.csv",
		ReceiversFile:              "BLENDED_WR_STATS.csv",
		DefendersFile:              "BLENDED_DB_STATS.csv",
		CoverageFile:               "DEF_COVERAGE_TAGS.csv",
		StadiumsFile:               "STADIUM_ENVIRONMENT_PROFILES.csv",
		OutputFile:                 "season_projection_output.csv",
		WeekOutputFile:             "test_week_projection.csv",
		SummaryFile:                "team_summary.csv",
		BlendWeights:               []float64{0.5, 0.3, 0.2},
		BlendKey:                   "Player",
		BlendOutput:                "BLENDED_WR_STATS.csv",
		ClimatePhase:               "Neutral",
		ForceDome:                  true,
		UseForecast:                false,
		WeatherBaseURL:             "https://api.weather.gov",
		WeatherTimeout:             10 * time.Second,
		WeatherRate:                5,
		WeatherUserAgent:           "yaculator (projections)",
		ScheduleBaseURL:            "https://www.pro-football-reference.com",
		ScheduleRate:               0.5,
		ScheduleUserAgent:          "Mozilla/5.0 (compatible; yaculator)",
		MetricsEnabled:             true,
		MetricsNamespace:           "yaculator",
		MetricsSubsystem:           "engine",
	}
}

// DataPath resolves name against DataDir unless it is absolute.
func (c *Config) DataPath(name string) string {
	if name == "" || filepath.IsAbs(name) || c.DataDir == "" {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// MetricLabels parses MetricsLabels into constant label pairs.
func (c *Config) MetricLabels() (map[string]string, error) {
	labels := make(map[string]string, len(c.MetricsLabels))
	for _, kv := range c.MetricsLabels {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: metrics_labels entry %q is not key=value", ErrInvalidConfig, kv)
		}
		labels[k] = strings.TrimSpace(v)
	}
	return labels, nil
}

// Validate reports the first invalid option.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.MaxProjectionsLimit <= 0:
		return fmt.Errorf("%w: max_projections_limit must be positive", ErrInvalidConfig)
	case c.Simulations < 0:
		return fmt.Errorf("%w: simulations must not be negative", ErrInvalidConfig)
	case c.StdDev < 0:
		return fmt.Errorf("%w: std_dev must not be negative", ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"slot_weight_multiplier":   c.SlotWeightMultiplier,
		"wide_weight_multiplier":   c.WideWeightMultiplier,
		"safety_weight_multiplier": c.SafetyWeightMultiplier,
		"lb_weight_multiplier":     c.LinebackerWeightMultiplier,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
		}
	}
	switch strings.ToLower(c.AlignmentMode) {
	case "", "soft", "hard":
	default:
		return fmt.Errorf("%w: alignment_mode %q", ErrInvalidConfig, c.AlignmentMode)
	}
	switch c.ClimatePhase {
	case "ElNino", "LaNina", "Neutral":
	default:
		return fmt.Errorf("%w: climate_phase %q", ErrInvalidConfig, c.ClimatePhase)
	}
	for _, w := range c.BlendWeights {
		if w < 0 {
			return fmt.Errorf("%w: blend_weights must not be negative", ErrInvalidConfig)
		}
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	if _, err := c.MetricLabels(); err != nil {
		return err
	}
	if c.UseForecast && c.WeatherBaseURL == "" {
		return fmt.Errorf("%w: weather_base_url required when use_forecast_weather is set", ErrInvalidConfig)
	}
	return nil
}
