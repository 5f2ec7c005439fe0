package projection

import (
	"sort"

	"github.com/okian/yaculator/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// Summarize groups results by receiver team. MeanMedian averages the sampled
// medians; when a team has no sampled rows it equals MeanAdjusted, the median
// of a symmetric band.
func Summarize(results []model.Result) []model.TeamSummary {
	type acc struct {
		adjusted []float64
		base     []float64
		medians  []float64
	}
	byTeam := make(map[string]*acc)
	for i := range results {
		r := &results[i]
		a, ok := byTeam[r.Team]
		if !ok {
			a = &acc{}
			byTeam[r.Team] = a
		}
		a.adjusted = append(a.adjusted, r.AdjustedPoints)
		a.base = append(a.base, r.BasePoints)
		if r.Sampled {
			a.medians = append(a.medians, r.Band.P50)
		}
	}

	out := make([]model.TeamSummary, 0, len(byTeam))
	for team, a := range byTeam {
		var total float64
		for _, v := range a.adjusted {
			total += v
		}
		meanAdj := stat.Mean(a.adjusted, nil)
		meanMedian := meanAdj
		if len(a.medians) > 0 {
			meanMedian = stat.Mean(a.medians, nil)
		}
		out = append(out, model.TeamSummary{
			Team:          team,
			Count:         len(a.adjusted),
			TotalAdjusted: total,
			MeanAdjusted:  meanAdj,
			MeanMedian:    meanMedian,
			MeanBase:      stat.Mean(a.base, nil),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}
