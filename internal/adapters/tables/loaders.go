package tables

import (
	"errors"
	"fmt"

	"github.com/okian/yaculator/internal/domain/alignment"
	"github.com/okian/yaculator/internal/domain/matchup"
	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/internal/domain/weather"
	"github.com/okian/yaculator/pkg/metrics"
)

// Table names used in reports and metrics.
const (
	TableSchedule  = "schedule"
	TableReceivers = "receivers"
	TableDefenders = "defenders"
	TableCoverage  = "coverage"
	TableStadiums  = "stadiums"
)

// Report summarizes one table load. Rejected rows are skipped, not fatal.
type Report struct {
	Table    string
	Loaded   int
	Rejected int
	Errors   []error
}

// Err joins the row errors, or returns nil.
func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

func (r *Report) accept() { r.Loaded++ }

func (r *Report) reject(line int, err error) {
	r.Rejected++
	r.Errors = append(r.Errors, fmt.Errorf("%s row %d: %w", r.Table, line, err))
}

func (r Report) record() {
	metrics.RecordRowsLoaded(r.Table, r.Loaded)
	metrics.RecordRowsRejected(r.Table, r.Rejected)
}

// Split-stat column suffixes for the receiver table.
const (
	suffixMan  = "VsMan"
	suffixZone = "VsZone"
)

// Receiver columns the projection cannot run without: the slot rate drives
// usage weights and the per-target splits drive the base rate.
var (
	receiverRequired = []string{
		"Player", "Team", "SlotSnapRate",
		"FantasyPointsPerTarget" + suffixMan, "FantasyPointsPerTarget" + suffixZone,
	}
	receiverNeeds = map[string]bool{
		"SlotSnapRate":                        true,
		"FantasyPointsPerTarget" + suffixMan:  true,
		"FantasyPointsPerTarget" + suffixZone: true,
	}
)

// defenderStats are the coverage columns every defender row must carry, in
// CoverageStats field order.
var defenderStats = []string{
	"Targets Allowed",
	"Catch Rate Allowed",
	"Passer Rating Allowed",
	"Fantasy Points Allowed Per Target",
	"Fantasy Points Allowed Per Game",
	"Man Coverage Success Rate",
	"Target Separation",
	"Man Coverage Rate",
}

// LoadSchedule reads the schedule table. Rows with a non-numeric week are
// skipped silently. Both the Visitor and Away spellings are accepted.
func LoadSchedule(path string) ([]model.Game, Report, error) {
	rep := Report{Table: TableSchedule}
	t, err := ReadTable(path)
	if err != nil {
		return nil, rep, err
	}
	cols := newColumns(TableSchedule, t.Header)
	visitor, ok := cols.first("Visitor", "Away")
	if !ok {
		return nil, rep, fmt.Errorf("%w: %s needs Visitor", ErrMissingColumn, TableSchedule)
	}
	if err := cols.require("Week", "Home"); err != nil {
		return nil, rep, err
	}

	games := make([]model.Game, 0, len(t.Rows))
	for i, row := range t.Rows {
		wk, ok := week(cols.str(row, "Week"))
		if !ok {
			continue
		}
		g := model.Game{
			Week:    wk,
			Day:     cols.str(row, "Day"),
			Date:    cols.str(row, "Date"),
			Time:    cols.str(row, "Time"),
			Home:    cols.str(row, "Home"),
			Visitor: cols.str(row, visitor),
		}
		if g.Home == "" || g.Visitor == "" {
			rep.reject(i+2, fmt.Errorf("%w: home=%q visitor=%q", model.ErrMissingIdentity, g.Home, g.Visitor))
			continue
		}
		g.HomePoints = points(cols.str(row, "HomePts"))
		g.VisitorPoints = points(cols.str(row, "VisitorPts"))
		games = append(games, g)
		rep.accept()
	}
	rep.record()
	return games, rep, nil
}

func points(s string) *int {
	v, ok := week(s)
	if !ok {
		return nil
	}
	return &v
}

// LoadReceivers reads the receiver table and derives usage weights with
// mult. The slot rate and both fantasy-points-per-target splits must be
// present and non-blank; the other split columns are optional and read as
// zero. A receiver name may appear once; later rows with the same name are
// rejected.
func LoadReceivers(path string, mult model.WeightMultipliers) ([]model.Receiver, Report, error) {
	rep := Report{Table: TableReceivers}
	t, err := ReadTable(path)
	if err != nil {
		return nil, rep, err
	}
	cols := newColumns(TableReceivers, t.Header)
	if err := cols.require(receiverRequired...); err != nil {
		return nil, rep, err
	}

	seen := make(map[string]struct{}, len(t.Rows))
	out := make([]model.Receiver, 0, len(t.Rows))
	for i, row := range t.Rows {
		in, err := receiverInput(cols, row)
		if err != nil {
			rep.reject(i+2, err)
			continue
		}
		rec, err := model.NewReceiver(in, mult)
		if err != nil {
			rep.reject(i+2, err)
			continue
		}
		if _, dup := seen[rec.Name]; dup {
			rep.reject(i+2, fmt.Errorf("%w: receiver %s", ErrDuplicateRow, rec.Name))
			continue
		}
		seen[rec.Name] = struct{}{}
		out = append(out, rec)
		rep.accept()
	}
	rep.record()
	return out, rep, nil
}

func receiverInput(cols columns, row []string) (model.ReceiverInput, error) {
	in := model.ReceiverInput{
		Name: cols.str(row, "Player"),
		Team: cols.str(row, "Team"),
	}
	var err error
	nums := []struct {
		dst  *float64
		name string
	}{
		{&in.SlotSnapRate, "SlotSnapRate"},
		{&in.SnapShare, "SnapShare"},
		{&in.RoutesRun, "RoutesRun"},
	}
	nums = append(nums, splitFields(&in.VsMan, suffixMan)...)
	nums = append(nums, splitFields(&in.VsZone, suffixZone)...)
	for _, n := range nums {
		parse := cols.num
		if receiverNeeds[n.name] {
			parse = cols.need
		}
		if *n.dst, err = parse(row, n.name); err != nil {
			return model.ReceiverInput{}, err
		}
	}
	return in, nil
}

func splitFields(p *model.SplitProfile, suffix string) []struct {
	dst  *float64
	name string
} {
	return []struct {
		dst  *float64
		name string
	}{
		{&p.Routes, "Routes" + suffix},
		{&p.WinRate, "WinRate" + suffix},
		{&p.TargetRate, "TargetRate" + suffix},
		{&p.Separation, "TargetSeparation" + suffix},
		{&p.FantasyPointsPerTarget, "FantasyPointsPerTarget" + suffix},
	}
}

// LoadDefenders reads the defender table and classifies every defender.
// The name comes from PlayerYear when present, else Player. An optional
// Role column overrides the rule-based hard role.
func LoadDefenders(path string) ([]model.Defender, Report, error) {
	rep := Report{Table: TableDefenders}
	t, err := ReadTable(path)
	if err != nil {
		return nil, rep, err
	}
	cols := newColumns(TableDefenders, t.Header)
	nameCol, ok := cols.first("PlayerYear", "Player")
	if !ok {
		return nil, rep, fmt.Errorf("%w: %s needs PlayerYear or Player", ErrMissingColumn, TableDefenders)
	}
	if err := cols.require("Team", "Position"); err != nil {
		return nil, rep, err
	}
	if err := cols.require(defenderStats...); err != nil {
		return nil, rep, err
	}

	out := make([]model.Defender, 0, len(t.Rows))
	for i, row := range t.Rows {
		stats, err := coverageStats(cols, row)
		if err != nil {
			rep.reject(i+2, err)
			continue
		}
		d, err := alignment.Classify(alignment.DefenderInput{
			Name:     cols.str(row, nameCol),
			Team:     cols.str(row, "Team"),
			Position: cols.str(row, "Position"),
			Role:     cols.str(row, "Role"),
			Stats:    stats,
		})
		if err != nil {
			rep.reject(i+2, err)
			continue
		}
		out = append(out, d)
		rep.accept()
	}
	rep.record()
	return out, rep, nil
}

func coverageStats(cols columns, row []string) (model.CoverageStats, error) {
	var s model.CoverageStats
	dst := [...]*float64{
		&s.TargetsAllowed,
		&s.CatchRateAllowed,
		&s.PasserRatingAllowed,
		&s.FantasyPointsPerTarget,
		&s.FantasyPointsPerGame,
		&s.ManSuccessRate,
		&s.TargetSeparation,
		&s.ManCoverageRate,
	}
	for i, name := range defenderStats {
		v, err := cols.need(row, name)
		if err != nil {
			return model.CoverageStats{}, err
		}
		*dst[i] = v
	}
	return s, nil
}

// LoadCoverage reads weekly coverage tags into a scheme map. Each
// (week, team) is labeled man when its man rate is at least its zone rate.
func LoadCoverage(path string) (*matchup.SchemeMap, Report, error) {
	rep := Report{Table: TableCoverage}
	t, err := ReadTable(path)
	if err != nil {
		return nil, rep, err
	}
	cols := newColumns(TableCoverage, t.Header)
	if err := cols.require("week", "team", "man_coverage_rate", "zone_coverage_rate"); err != nil {
		return nil, rep, err
	}

	m := matchup.NewSchemeMap()
	for i, row := range t.Rows {
		wk, ok := week(cols.str(row, "week"))
		team := cols.str(row, "team")
		if !ok || team == "" {
			rep.reject(i+2, fmt.Errorf("%w: week=%q team=%q", ErrBadValue, cols.str(row, "week"), team))
			continue
		}
		man, err := cols.num(row, "man_coverage_rate")
		if err != nil {
			rep.reject(i+2, err)
			continue
		}
		zone, err := cols.num(row, "zone_coverage_rate")
		if err != nil {
			rep.reject(i+2, err)
			continue
		}
		m.Add(wk, team, man, zone)
		rep.accept()
	}
	rep.record()
	return m, rep, nil
}

// LoadStadiums reads the stadium environment profiles.
func LoadStadiums(path string) ([]weather.Stadium, Report, error) {
	rep := Report{Table: TableStadiums}
	t, err := ReadTable(path)
	if err != nil {
		return nil, rep, err
	}
	cols := newColumns(TableStadiums, t.Header)
	if err := cols.require("Team"); err != nil {
		return nil, rep, err
	}

	out := make([]weather.Stadium, 0, len(t.Rows))
	for i, row := range t.Rows {
		s, err := stadium(cols, row)
		if err != nil {
			rep.reject(i+2, err)
			continue
		}
		out = append(out, s)
		rep.accept()
	}
	rep.record()
	return out, rep, nil
}

func stadium(cols columns, row []string) (weather.Stadium, error) {
	s := weather.Stadium{
		Team:            cols.str(row, "Team"),
		State:           cols.str(row, "State"),
		TurfType:        cols.str(row, "TurfType"),
		HumidityControl: cols.str(row, "HumidityControl"),
	}
	if s.Team == "" {
		return weather.Stadium{}, fmt.Errorf("%w: stadium without team", model.ErrMissingIdentity)
	}
	var err error
	if s.Latitude, err = cols.num(row, "Latitude"); err != nil {
		return weather.Stadium{}, err
	}
	if s.Longitude, err = cols.num(row, "Longitude"); err != nil {
		return weather.Stadium{}, err
	}
	flags := []struct {
		dst  *bool
		name string
	}{
		{&s.Dome, "Dome"},
		{&s.ColdProne, "ColdProne"},
		{&s.WindProne, "WindProne"},
		{&s.HighAltitude, "HighAltitude"},
	}
	for _, f := range flags {
		if *f.dst, err = cols.flag(row, f.name); err != nil {
			return weather.Stadium{}, err
		}
	}
	return s, nil
}
