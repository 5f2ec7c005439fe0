package tables

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/yaculator/internal/domain/blend"
	"github.com/okian/yaculator/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadSchedule(t *testing.T) {
	Convey("Given a schedule with a playoff row", t, func() {
		path := writeCSV(t, "schedule.csv", strings.Join([]string{
			"Week,Day,Date,Visitor,VisitorPts,Home,HomePts,Time",
			"1,Thu,2025-09-04,DAL,,PHI,,8:20PM",
			"2.0,Sun,2025-09-14,CHI,17,DET,24,1:00PM",
			"WildCard,Sat,2026-01-10,GB,,DET,,",
			"3,Sun,2025-09-21,,,MIN,,",
		}, "\n"))

		games, rep, err := LoadSchedule(path)

		Convey("Then numeric weeks load and playoff rows are skipped", func() {
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 2)
			So(games[1].Week, ShouldEqual, 2)
			So(*games[1].HomePoints, ShouldEqual, 24)
			So(games[0].HomePoints, ShouldBeNil)
		})

		Convey("Then a row without a visitor is rejected", func() {
			So(rep.Loaded, ShouldEqual, 2)
			So(rep.Rejected, ShouldEqual, 1)
			So(errors.Is(rep.Err(), model.ErrMissingIdentity), ShouldBeTrue)
		})
	})

	Convey("Given a completed-season schedule with an Away column", t, func() {
		path := writeCSV(t, "schedule.csv", "Week,Home,Away\n1,DET,LAR\n")
		games, _, err := LoadSchedule(path)
		So(err, ShouldBeNil)
		So(games[0].Visitor, ShouldEqual, "LAR")
	})

	Convey("Given a schedule without a Home column", t, func() {
		path := writeCSV(t, "schedule.csv", "Week,Visitor\n1,DAL\n")
		_, _, err := LoadSchedule(path)
		So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
	})
}

func TestLoadReceivers(t *testing.T) {
	Convey("Given a receiver table", t, func() {
		path := writeCSV(t, "wr.csv", strings.Join([]string{
			"Player,Team,SlotSnapRate,SnapShare,RoutesRun,FantasyPointsPerTargetVsMan,FantasyPointsPerTargetVsZone",
			"Slot Guy,DET,0.5,0.9,400,2.1,1.8",
			"Outside Guy,GB,0.1,0.8,350,1.9,1.6",
			"Slot Guy,DET,0.4,0.9,400,2.0,1.7",
			"Bad Rate,MIN,1.5,0.5,100,1,1",
			"Bad Cell,CHI,abc,0.5,100,1,1",
		}, "\n"))

		recs, rep, err := LoadReceivers(path, model.DefaultWeightMultipliers())
		So(err, ShouldBeNil)

		Convey("Then valid rows become receivers with derived weights", func() {
			So(recs, ShouldHaveLength, 2)
			r := recs[0]
			So(r.Name, ShouldEqual, "Slot Guy")
			So(r.Weights[model.Slot], ShouldAlmostEqual, 0.5)
			So(r.Weights[model.Wide], ShouldAlmostEqual, 0.5)
			So(r.Weights[model.Safety], ShouldAlmostEqual, 0.04)
			So(r.Weights[model.Linebacker], ShouldAlmostEqual, 0.01)
			So(r.VsMan.FantasyPointsPerTarget, ShouldEqual, 2.1)
		})

		Convey("Then absent optional split columns read as zero", func() {
			So(recs[1].VsZone.FantasyPointsPerTarget, ShouldEqual, 1.6)
			So(recs[1].VsMan.WinRate, ShouldEqual, 0)
			So(recs[1].VsZone.Routes, ShouldEqual, 0)
		})

		Convey("Then duplicates and invalid rows are rejected", func() {
			So(rep.Loaded, ShouldEqual, 2)
			So(rep.Rejected, ShouldEqual, 3)
			So(errors.Is(rep.Err(), ErrDuplicateRow), ShouldBeTrue)
			So(errors.Is(rep.Err(), model.ErrInvalidSnapRate), ShouldBeTrue)
			So(errors.Is(rep.Err(), ErrBadValue), ShouldBeTrue)
		})
	})
}

func TestLoadReceiversRequiredColumns(t *testing.T) {
	Convey("Given a receiver table without per-target splits", t, func() {
		path := writeCSV(t, "wr.csv", "Player,Team,SlotSnapRate\nSlot Guy,DET,0.5\n")

		recs, _, err := LoadReceivers(path, model.DefaultWeightMultipliers())

		Convey("Then the load fails naming the missing columns", func() {
			So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "FantasyPointsPerTargetVsMan")
			So(err.Error(), ShouldContainSubstring, "FantasyPointsPerTargetVsZone")
			So(recs, ShouldBeNil)
		})
	})

	Convey("Given a receiver row with a blank per-target split", t, func() {
		path := writeCSV(t, "wr.csv", strings.Join([]string{
			"Player,Team,SlotSnapRate,FantasyPointsPerTargetVsMan,FantasyPointsPerTargetVsZone",
			"Slot Guy,DET,0.5,2.1,",
			"Outside Guy,GB,0.1,1.9,1.6",
		}, "\n"))

		recs, rep, err := LoadReceivers(path, model.DefaultWeightMultipliers())

		Convey("Then only that row is rejected", func() {
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].Name, ShouldEqual, "Outside Guy")
			So(rep.Rejected, ShouldEqual, 1)
			So(errors.Is(rep.Err(), ErrBadValue), ShouldBeTrue)
		})
	})
}

const defenderHeader = "Targets Allowed,Catch Rate Allowed,Passer Rating Allowed," +
	"Fantasy Points Allowed Per Target,Fantasy Points Allowed Per Game," +
	"Man Coverage Success Rate,Target Separation,Man Coverage Rate"

func TestLoadDefenders(t *testing.T) {
	Convey("Given a defender table keyed by PlayerYear", t, func() {
		path := writeCSV(t, "db.csv", strings.Join([]string{
			"PlayerYear,Player,Team,Position," + defenderHeader,
			"CB One 2024,CB One,DET,CB,40,0.6,90,1.2,5,0.5,2,0.7",
			"Nickel 2024,Nickel,DET,CB,50,0.8,100,1.4,6,0.4,1.5,0.3",
			"Safety 2024,Safety,DET,s,20,0.5,80,1.0,3,0.5,2,0.2",
			",Nameless,DET,CB,30,0.5,80,1.0,3,0.5,2,0.5",
			"Blank 2024,Blank,DET,CB,30,,80,1.0,3,0.5,2,0.5",
		}, "\n"))

		defs, rep, err := LoadDefenders(path)

		Convey("Then defenders are classified", func() {
			So(err, ShouldBeNil)
			So(defs, ShouldHaveLength, 3)
			So(defs[0].Name, ShouldEqual, "CB One 2024")
			So(defs[0].Role, ShouldEqual, model.Wide)
			So(defs[1].Role, ShouldEqual, model.Slot)
			So(defs[2].Role, ShouldEqual, model.Safety)
			So(defs[2].Position, ShouldEqual, "S")
		})

		Convey("Then rows without a name or with a blank stat are rejected", func() {
			So(rep.Rejected, ShouldEqual, 2)
			So(errors.Is(rep.Err(), ErrBadValue), ShouldBeTrue)
			So(rep.Err().Error(), ShouldContainSubstring, "Catch Rate Allowed is blank")
		})

		Convey("Then every coverage stat is read", func() {
			s := defs[0].Stats
			So(s.TargetsAllowed, ShouldEqual, 40)
			So(s.FantasyPointsPerTarget, ShouldEqual, 1.2)
			So(s.FantasyPointsPerGame, ShouldEqual, 5)
			So(s.ManSuccessRate, ShouldEqual, 0.5)
			So(s.ManCoverageRate, ShouldEqual, 0.7)
		})
	})

	Convey("Given a defender table with a charted Role column", t, func() {
		path := writeCSV(t, "db.csv", strings.Join([]string{
			"Player,Team,Position,Role," + defenderHeader,
			"Charted,DET,CB,slot,40,0.6,90,1.2,5,0.5,2,0.7",
			"Uncharted,DET,CB,,40,0.6,90,1.2,5,0.5,2,0.7",
			"Typo,DET,CB,nickel,40,0.6,90,1.2,5,0.5,2,0.7",
		}, "\n"))

		defs, rep, err := LoadDefenders(path)

		Convey("Then a charted role overrides the rules and a blank one does not", func() {
			So(err, ShouldBeNil)
			So(defs, ShouldHaveLength, 2)
			So(defs[0].Role, ShouldEqual, model.Slot)
			So(defs[1].Role, ShouldEqual, model.Wide)
		})

		Convey("Then an unknown role rejects the row", func() {
			So(rep.Rejected, ShouldEqual, 1)
			So(errors.Is(rep.Err(), model.ErrUnknownRole), ShouldBeTrue)
		})
	})

	Convey("Given a defender table without its coverage columns", t, func() {
		path := writeCSV(t, "db.csv", "Player,Team,Position\nCB One,DET,CB\n")

		defs, _, err := LoadDefenders(path)

		Convey("Then the load fails naming the missing columns", func() {
			So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Man Coverage Rate")
			So(defs, ShouldBeNil)
		})
	})
}

func TestLoadCoverage(t *testing.T) {
	Convey("Given weekly coverage tags", t, func() {
		path := writeCSV(t, "cov.csv", strings.Join([]string{
			"week,team,man_coverage_rate,zone_coverage_rate",
			"1,DET,0.4,0.6",
			"1,GB,0.5,0.5",
			"x,MIN,0.5,0.5",
		}, "\n"))

		m, rep, err := LoadCoverage(path)
		So(err, ShouldBeNil)

		Convey("Then schemes follow the larger rate with ties to man", func() {
			s, ok := m.Lookup(1, "DET")
			So(ok, ShouldBeTrue)
			So(s, ShouldEqual, model.Zone)
			s, _ = m.Lookup(1, "GB")
			So(s, ShouldEqual, model.Man)
			So(m.Len(), ShouldEqual, 2)
			So(rep.Rejected, ShouldEqual, 1)
		})
	})
}

func TestLoadStadiums(t *testing.T) {
	Convey("Given stadium profiles", t, func() {
		path := writeCSV(t, "stadiums.csv", strings.Join([]string{
			"Team,Latitude,Longitude,Dome,ColdProne,WindProne,HighAltitude,TurfType,HumidityControl,State",
			"DET,42.34,-83.04,True,False,False,False,Artificial,Yes,MI",
			"GB,44.50,-88.06,False,True,True,False,Natural,No,WI",
			"BAD,1,1,maybe,False,False,False,Natural,No,XX",
		}, "\n"))

		s, rep, err := LoadStadiums(path)

		Convey("Then profiles parse with boolean flags", func() {
			So(err, ShouldBeNil)
			So(s, ShouldHaveLength, 2)
			So(s[0].Dome, ShouldBeTrue)
			So(s[1].ColdProne, ShouldBeTrue)
			So(s[1].Latitude, ShouldAlmostEqual, 44.50)
			So(s[1].State, ShouldEqual, "WI")
			So(rep.Rejected, ShouldEqual, 1)
		})
	})
}

func TestWriters(t *testing.T) {
	rec, err := model.NewReceiver(model.ReceiverInput{Name: "A", Team: "DET", SlotSnapRate: 0.5}, model.DefaultWeightMultipliers())
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given unsampled results", t, func() {
		results := []model.Result{
			model.NewResult(1, rec, "GB", model.Man, 10, 7.004, 1.0, nil),
		}
		var buf bytes.Buffer
		So(WriteResults(&buf, results), ShouldBeNil)

		Convey("Then the fixed columns are written without percentiles", func() {
			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldEqual, "week,wr_name,team,opp_team,scheme,base_pts,adj_pts,slot_weight,wide_weight,safety_weight,lb_weight,env_boost")
			So(lines[1], ShouldEqual, "1,A,DET,GB,man,10,7,0.5,0.5,0.04,0.01,1")
		})
	})

	Convey("Given sampled results", t, func() {
		band := model.Band{P25: 5.5, P50: 7, P75: 8.5}
		table := ResultsTable([]model.Result{model.NewResult(2, rec, "CHI", model.Zone, 8, 7, 1.05, &band)})

		Convey("Then percentile columns are appended", func() {
			So(table.Header[len(table.Header)-1], ShouldEqual, "adj_pts_p75")
			So(table.Rows[0][len(table.Header)-2], ShouldEqual, "7")
		})
	})

	Convey("Given team summaries written to disk", t, func() {
		path := filepath.Join(t.TempDir(), "out", "summary.csv")
		err := WriteSummariesFile(path, []model.TeamSummary{{Team: "DET", TotalAdjusted: 14.126, MeanAdjusted: 7.063, MeanMedian: 7, MeanBase: 10}})
		So(err, ShouldBeNil)

		Convey("Then they read back with rounded values", func() {
			tbl, err := ReadTable(path)
			So(err, ShouldBeNil)
			So(tbl.Header, ShouldResemble, summaryHeader)
			So(tbl.Rows[0], ShouldResemble, []string{"DET", "14.13", "7.06", "7", "10"})
		})
	})

	Convey("Given a scraped schedule", t, func() {
		pts := 21
		path := filepath.Join(t.TempDir(), "schedule.csv")
		So(WriteScheduleFile(path, []model.Game{{Week: 1, Home: "DET", Visitor: "GB", HomePoints: &pts}}), ShouldBeNil)

		Convey("Then it loads back through LoadSchedule", func() {
			games, _, err := LoadSchedule(path)
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 1)
			So(*games[0].HomePoints, ShouldEqual, 21)
			So(games[0].VisitorPoints, ShouldBeNil)
		})
	})
}

func TestCheckFile(t *testing.T) {
	Convey("Given quality-control targets", t, func() {
		dir := t.TempDir()
		ok := writeCSV(t, "ok.csv", "a,b\n1,2\n")
		headerOnly := writeCSV(t, "header.csv", "a,b\n")
		blank := writeCSV(t, "blank.csv", "")
		broken := writeCSV(t, "broken.csv", "a,b\n\"unterminated,2\n")

		checks := CheckFiles(ok, headerOnly, blank, filepath.Join(dir, "nope.csv"), broken)

		Convey("Then each file gets its verdict", func() {
			So(checks[0].Status, ShouldEqual, StatusOK)
			So(checks[0].Rows, ShouldEqual, 1)
			So(checks[1].Status, ShouldEqual, StatusEmpty)
			So(checks[2].Status, ShouldEqual, StatusEmpty)
			So(checks[3].Status, ShouldEqual, StatusMissing)
			So(checks[4].Status, ShouldEqual, StatusError)
			So(checks[4].Err, ShouldNotBeNil)
			So(AllOK(checks), ShouldBeFalse)
			So(StatusMissing.String(), ShouldEqual, "Missing")
		})
	})

	Convey("Given a table round trip", t, func() {
		path := filepath.Join(t.TempDir(), "t.csv")
		in := blend.Table{Header: []string{"Player", "X"}, Rows: [][]string{{"A, Jr.", "1"}}}
		So(WriteTable(path, in), ShouldBeNil)
		out, err := ReadTable(path)
		So(err, ShouldBeNil)
		So(out.Rows[0][0], ShouldEqual, "A, Jr.")
	})
}
