package model

import "math"

// Band holds Monte Carlo percentiles around a point estimate.
type Band struct {
	P25 float64
	P50 float64
	P75 float64
}

// Result is one receiver's projection for one week. Values are rounded for
// output; internal arithmetic never reads them back.
type Result struct {
	Week             int
	Receiver         string
	Team             string
	Opponent         string
	Scheme           Scheme
	BasePoints       float64
	AdjustedPoints   float64
	SlotWeight       float64
	WideWeight       float64
	SafetyWeight     float64
	LinebackerWeight float64
	EnvBoost         float64
	Sampled          bool
	Band             Band
}

// NewResult builds the rounded output record. Points and weights round to two
// decimals, the environment boost to three.
func NewResult(week int, rec Receiver, opponent string, scheme Scheme, base, adjusted, env float64, band *Band) Result {
	r := Result{
		Week:             week,
		Receiver:         rec.Name,
		Team:             rec.Team,
		Opponent:         opponent,
		Scheme:           scheme,
		BasePoints:       Round(base, 2),
		AdjustedPoints:   Round(adjusted, 2),
		SlotWeight:       Round(rec.Weights[Slot], 2),
		WideWeight:       Round(rec.Weights[Wide], 2),
		SafetyWeight:     Round(rec.Weights[Safety], 2),
		LinebackerWeight: Round(rec.Weights[Linebacker], 2),
		EnvBoost:         Round(env, 3),
	}
	if band != nil {
		r.Sampled = true
		r.Band = Band{
			P25: Round(band.P25, 2),
			P50: Round(band.P50, 2),
			P75: Round(band.P75, 2),
		}
	}
	return r
}

// TeamSummary aggregates a team's receiver projections over a run.
type TeamSummary struct {
	Team          string
	Count         int
	TotalAdjusted float64
	MeanAdjusted  float64
	MeanMedian    float64
	MeanBase      float64
}

// Round rounds x half away from zero to the given number of decimals.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
