package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/yaculator/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should carry the projection defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.SlotWeightMultiplier, convey.ShouldEqual, 1.0)
			convey.So(cfg.WideWeightMultiplier, convey.ShouldEqual, 1.0)
			convey.So(cfg.SafetyWeightMultiplier, convey.ShouldEqual, 0.2)
			convey.So(cfg.LinebackerWeightMultiplier, convey.ShouldEqual, 0.1)
			convey.So(cfg.DefaultManZoneBlend, convey.ShouldBeTrue)
			convey.So(cfg.AlignmentMode, convey.ShouldEqual, "soft")
			convey.So(cfg.Simulations, convey.ShouldEqual, 100)
			convey.So(cfg.StdDev, convey.ShouldEqual, 2.0)
			convey.So(cfg.BlendWeights, convey.ShouldResemble, []float64{0.5, 0.3, 0.2})
			convey.So(cfg.ClimatePhase, convey.ShouldEqual, "Neutral")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_DataPath(t *testing.T) {
	convey.Convey("Given a data directory", t, func() {
		cfg := config.New()
		cfg.DataDir = "in"

		convey.So(cfg.DataPath("a.csv"), convey.ShouldEqual, "in/a.csv")
		convey.So(cfg.DataPath("/abs/a.csv"), convey.ShouldEqual, "/abs/a.csv")
		convey.So(cfg.DataPath(""), convey.ShouldEqual, "")

		cfg.DataDir = ""
		convey.So(cfg.DataPath("a.csv"), convey.ShouldEqual, "a.csv")
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":          func(c *config.Config) { c.Addr = "" },
			"zero workers":        func(c *config.Config) { c.WorkerCount = 0 },
			"zero queue":          func(c *config.Config) { c.QueueSize = 0 },
			"negative sims":       func(c *config.Config) { c.Simulations = -1 },
			"negative std":        func(c *config.Config) { c.StdDev = -0.5 },
			"negative multiplier": func(c *config.Config) { c.SafetyWeightMultiplier = -0.2 },
			"unknown mode":        func(c *config.Config) { c.AlignmentMode = "fuzzy" },
			"unknown phase":       func(c *config.Config) { c.ClimatePhase = "Monsoon" },
			"negative blend":      func(c *config.Config) { c.BlendWeights = []float64{0.5, -0.1} },
			"unsorted buckets":    func(c *config.Config) { c.MetricsBuckets = []float64{5, 1} },
			"bare metric label":   func(c *config.Config) { c.MetricsLabels = []string{"region"} },
			"forecast no url": func(c *config.Config) {
				c.UseForecast = true
				c.WeatherBaseURL = ""
			},
		}

		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()

				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("Then zero simulations is allowed", func() {
			cfg := config.New()
			cfg.Simulations = 0
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_MetricLabels(t *testing.T) {
	convey.Convey("Given key=value metric labels", t, func() {
		cfg := config.New()
		cfg.MetricsLabels = []string{"env=prod", " region = us "}

		labels, err := cfg.MetricLabels()

		convey.So(err, convey.ShouldBeNil)
		convey.So(labels, convey.ShouldResemble, map[string]string{"env": "prod", "region": "us"})
	})

	convey.Convey("Given no metric labels", t, func() {
		labels, err := config.New().MetricLabels()

		convey.So(err, convey.ShouldBeNil)
		convey.So(labels, convey.ShouldBeEmpty)
	})
}
