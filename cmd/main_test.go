package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/yaculator/internal/adapters/tables"
	"github.com/okian/yaculator/internal/config"
	"github.com/okian/yaculator/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// seedData writes a minimal set of input tables under the configured names.
func seedData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	writeFile(t, dir, cfg.ScheduleFile,
		"Week,Day,Date,Visitor,VisitorPts,Home,HomePts,Time",
		"1,Sun,2025-09-07,GB,,DET,,1:00PM",
		"2,Sun,2025-09-14,DET,,GB,,1:00PM",
		"3,Sun,2025-09-21,CHI,,MIN,,1:00PM",
	)
	writeFile(t, dir, cfg.ReceiversFile,
		"Player,Team,SlotSnapRate,SnapShare,RoutesRun,FantasyPointsPerTargetVsMan,FantasyPointsPerTargetVsZone",
		"Slot Guy,DET,0.5,0.9,400,10,6",
	)
	writeFile(t, dir, cfg.DefendersFile,
		"PlayerYear,Team,Position,Targets Allowed,Catch Rate Allowed,Passer Rating Allowed,Fantasy Points Allowed Per Target," +
			"Fantasy Points Allowed Per Game,Man Coverage Success Rate,Target Separation,Man Coverage Rate",
		"Corner,GB,CB,0,0.5,80,0.3,0,0,0,0.5",
	)
	writeFile(t, dir, cfg.CoverageFile,
		"week,team,man_coverage_rate,zone_coverage_rate",
		"1,GB,0.6,0.4",
	)
	writeFile(t, dir, cfg.StadiumsFile,
		"Team,Latitude,Longitude,Dome,ColdProne,WindProne,HighAltitude,TurfType,HumidityControl,State",
		"DET,42.34,-83.04,True,False,False,False,Artificial,Yes,MI",
	)
	return dir
}

func TestRunCommands(t *testing.T) {
	convey.Convey("Given a data directory with every input table", t, func() {
		dir := seedData(t)
		t.Setenv(config.EnvPrefix+"DATA_DIR", dir)
		t.Setenv(config.EnvPrefix+"SIMULATIONS", "0")
		t.Setenv(config.EnvPrefix+"LOG_LEVEL", "error")
		ctx := context.Background()
		var out bytes.Buffer

		convey.Convey("When the default command runs", func() {
			err := run(ctx, nil, &out)

			convey.Convey("Then the season projection and summary are written", func() {
				convey.So(err, convey.ShouldBeNil)
				cfg := config.New()
				results := tables.CheckFile(filepath.Join(dir, cfg.OutputFile))
				convey.So(results.Status, convey.ShouldEqual, tables.StatusOK)
				convey.So(results.Rows, convey.ShouldEqual, 2)
				summary := tables.CheckFile(filepath.Join(dir, cfg.SummaryFile))
				convey.So(summary.Rows, convey.ShouldEqual, 1)
				convey.So(out.String(), convey.ShouldContainSubstring, "2 projections over 3 weeks")
			})

			convey.Convey("And the team-weeks without a game are listed", func() {
				convey.So(out.String(), convey.ShouldContainSubstring, "no matchup for 1 team-weeks")
				convey.So(out.String(), convey.ShouldContainSubstring, "week 3 DET")
			})
		})

		convey.Convey("When a single week runs", func() {
			err := run(ctx, []string{"week", "-week", "2"}, &out)

			convey.So(err, convey.ShouldBeNil)
			check := tables.CheckFile(filepath.Join(dir, config.New().WeekOutputFile))
			convey.So(check.Rows, convey.ShouldEqual, 1)
		})

		convey.Convey("When an unscheduled week runs", func() {
			err := run(ctx, []string{"week", "-week", "9"}, &out)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When quality checks run", func() {
			err := run(ctx, []string{"qc"}, &out)

			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.Count(out.String(), "OK"), convey.ShouldEqual, 5)
		})

		convey.Convey("When a table is missing", func() {
			convey.So(os.Remove(filepath.Join(dir, config.New().CoverageFile)), convey.ShouldBeNil)
			err := run(ctx, []string{"qc"}, &out)

			convey.So(errors.Is(err, errQC), convey.ShouldBeTrue)
			convey.So(out.String(), convey.ShouldContainSubstring, "Missing")
		})
	})
}

func TestRunBlend(t *testing.T) {
	convey.Convey("Given two seasons and a config file naming them", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "wr_2024.csv", "Player,Team,Targets", "A,DET,100", "B,GB,50")
		writeFile(t, dir, "wr_2023.csv", "Player,Team,Targets", "A,DET,50")
		cfgPath := writeFile(t, dir, "config.yaml",
			"data_dir: "+dir,
			"blend_inputs: [wr_2024.csv, wr_2023.csv]",
			"blend_weights: [0.75, 0.25]",
			"blend_output: blended.csv",
		)
		t.Setenv(config.EnvFileVar, cfgPath)
		t.Setenv(config.EnvPrefix+"LOG_LEVEL", "error")
		var out bytes.Buffer

		err := run(context.Background(), []string{"blend"}, &out)

		convey.Convey("Then the blended table is written", func() {
			convey.So(err, convey.ShouldBeNil)
			blended, err := tables.ReadTable(filepath.Join(dir, "blended.csv"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(blended.Len(), convey.ShouldEqual, 2)
			convey.So(blended.Rows[0][blended.Column("Targets")], convey.ShouldEqual, "87.5")
			convey.So(blended.Rows[1][blended.Column("Targets")], convey.ShouldEqual, "50")
		})
	})
}

func TestRunUsage(t *testing.T) {
	convey.Convey("Given an unknown command", t, func() {
		t.Setenv(config.EnvPrefix+"LOG_LEVEL", "error")
		err := run(context.Background(), []string{"dance"}, &bytes.Buffer{})
		convey.So(errors.Is(err, errUsage), convey.ShouldBeTrue)
	})

	convey.Convey("Given the help command", t, func() {
		var out bytes.Buffer
		convey.So(run(context.Background(), []string{"help"}, &out), convey.ShouldBeNil)
		convey.So(out.String(), convey.ShouldContainSubstring, "schedule -season")
	})

	convey.Convey("Given an invalid configuration", t, func() {
		t.Setenv(config.EnvPrefix+"ALIGNMENT_MODE", "sideways")
		err := run(context.Background(), []string{"season"}, &bytes.Buffer{})
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestServeMux(t *testing.T) {
	convey.Convey("Given a service that has run the season", t, func() {
		dir := seedData(t)
		t.Setenv(config.EnvPrefix+"DATA_DIR", dir)
		t.Setenv(config.EnvPrefix+"SIMULATIONS", "0")
		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)

		svc, err := loadService(context.Background(), cfg)
		convey.So(err, convey.ShouldBeNil)
		_, err = svc.RunSeason(context.Background())
		convey.So(err, convey.ShouldBeNil)
		mux := newMux(cfg, svc)

		convey.Convey("Then the API and its docs are routed", func() {
			for _, path := range []string{"/weeks", "/projections?week=1", "/summary", "/healthz", "/openapi.yaml", "/api-docs"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestInitMetrics(t *testing.T) {
	convey.Convey("Given metrics settings in config", t, func() {
		convey.Reset(func() { metrics.Configure() })
		cfg := config.New()
		cfg.MetricsNamespace = "wrcli"
		cfg.MetricsLabels = []string{"env=ci"}

		convey.Convey("When the manager is installed", func() {
			m, err := initMetrics(cfg)

			convey.Convey("Then it is the global one and series use the namespace", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(metrics.Default(), convey.ShouldEqual, m)
				metrics.RecordMissingMatchup()

				families, gerr := metrics.GetRegistry().Gather()
				convey.So(gerr, convey.ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				convey.So(names, convey.ShouldContain, "wrcli_engine_missing_matchups_total")
			})
		})

		convey.Convey("When metrics are disabled", func() {
			cfg.MetricsEnabled = false
			m, err := initMetrics(cfg)

			convey.So(err, convey.ShouldBeNil)
			convey.So(m.Enabled(), convey.ShouldBeFalse)
		})

		convey.Convey("When a label is malformed", func() {
			cfg.MetricsLabels = []string{"env"}
			_, err := initMetrics(cfg)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
