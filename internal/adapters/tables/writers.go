package tables

import (
	"io"
	"strconv"

	"github.com/okian/yaculator/internal/domain/blend"
	"github.com/okian/yaculator/internal/domain/model"
)

// Result columns. Percentile columns follow when any row was sampled.
var (
	resultHeader = []string{
		"week", "wr_name", "team", "opp_team", "scheme", "base_pts", "adj_pts",
		"slot_weight", "wide_weight", "safety_weight", "lb_weight", "env_boost",
	}
	bandHeader    = []string{"adj_pts_p25", "adj_pts_p50", "adj_pts_p75"}
	summaryHeader = []string{"Team", "Total Adj Pts", "Avg Adj Pts", "Avg Median Pts", "Avg Base Pts"}
	scheduleHead  = []string{"Week", "Day", "Date", "Visitor", "VisitorPts", "Home", "HomePts", "Time"}
)

// ResultsTable renders results in input order.
func ResultsTable(results []model.Result) blend.Table {
	sampled := false
	for i := range results {
		if results[i].Sampled {
			sampled = true
			break
		}
	}
	header := append([]string(nil), resultHeader...)
	if sampled {
		header = append(header, bandHeader...)
	}

	t := blend.Table{Header: header, Rows: make([][]string, 0, len(results))}
	for i := range results {
		r := &results[i]
		row := []string{
			strconv.Itoa(r.Week),
			r.Receiver,
			r.Team,
			r.Opponent,
			r.Scheme.String(),
			formatFloat(r.BasePoints),
			formatFloat(r.AdjustedPoints),
			formatFloat(r.SlotWeight),
			formatFloat(r.WideWeight),
			formatFloat(r.SafetyWeight),
			formatFloat(r.LinebackerWeight),
			formatFloat(r.EnvBoost),
		}
		if sampled {
			if r.Sampled {
				row = append(row, formatFloat(r.Band.P25), formatFloat(r.Band.P50), formatFloat(r.Band.P75))
			} else {
				row = append(row, "", "", "")
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteResults writes the projection table to w.
func WriteResults(w io.Writer, results []model.Result) error {
	return writeTable(w, ResultsTable(results))
}

// WriteResultsFile writes the projection table to path.
func WriteResultsFile(path string, results []model.Result) error {
	return WriteTable(path, ResultsTable(results))
}

// SummaryTable renders team summaries.
func SummaryTable(summaries []model.TeamSummary) blend.Table {
	t := blend.Table{Header: summaryHeader, Rows: make([][]string, 0, len(summaries))}
	for _, s := range summaries {
		t.Rows = append(t.Rows, []string{
			s.Team,
			formatFloat(model.Round(s.TotalAdjusted, 2)),
			formatFloat(model.Round(s.MeanAdjusted, 2)),
			formatFloat(model.Round(s.MeanMedian, 2)),
			formatFloat(model.Round(s.MeanBase, 2)),
		})
	}
	return t
}

// WriteSummariesFile writes the team summary table to path.
func WriteSummariesFile(path string, summaries []model.TeamSummary) error {
	return WriteTable(path, SummaryTable(summaries))
}

// ScheduleTable renders games in the schedule layout LoadSchedule reads.
func ScheduleTable(games []model.Game) blend.Table {
	t := blend.Table{Header: scheduleHead, Rows: make([][]string, 0, len(games))}
	for _, g := range games {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(g.Week), g.Day, g.Date,
			g.Visitor, optInt(g.VisitorPoints),
			g.Home, optInt(g.HomePoints),
			g.Time,
		})
	}
	return t
}

// WriteScheduleFile writes games to path.
func WriteScheduleFile(path string, games []model.Game) error {
	return WriteTable(path, ScheduleTable(games))
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
