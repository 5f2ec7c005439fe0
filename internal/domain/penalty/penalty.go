// Package penalty converts defender coverage profiles into role suppression
// penalties.
//
// A penalty is a relative weighting factor, not a probability: it is roughly
// in [0,1] but unbounded above. Projection multiplies usage by (1 - penalty).
package penalty

import (
	"github.com/okian/yaculator/internal/domain/alignment"
	"github.com/okian/yaculator/internal/domain/model"
)

// Neutral is the penalty for an unknown role or an unfilled role pool.
// An unfilled role contributes nothing to projected production.
const Neutral = 1.0

const (
	passerRatingScale      = 100.0
	linebackerPointsScale  = 15.0
	safetyCatchWeight      = 0.7
	safetySeparationWeight = 0.3
)

// Formula computes one role's penalty from a coverage profile.
type Formula func(model.CoverageStats) float64

// formulas is indexed by model.Role.
var formulas = [model.NumRoles]Formula{
	model.Slot: func(s model.CoverageStats) float64 {
		return (s.CatchRateAllowed + s.FantasyPointsPerTarget) / 2
	},
	model.Wide: func(s model.CoverageStats) float64 {
		return (s.TargetSeparation + s.PasserRatingAllowed) / 2 / passerRatingScale
	},
	model.Safety: func(s model.CoverageStats) float64 {
		return safetyCatchWeight*s.CatchRateAllowed + safetySeparationWeight*s.TargetSeparation
	},
	model.Linebacker: func(s model.CoverageStats) float64 {
		return s.FantasyPointsPerGame / linebackerPointsScale
	},
}

// For returns the penalty a defender with stats s imposes when playing role.
func For(role model.Role, s model.CoverageStats) float64 {
	if !role.Valid() {
		return Neutral
	}
	return formulas[role](s)
}

// Aggregate reduces a defender pool to one penalty per role.
//
// Hard mode averages For(role) over defenders whose hard role is role. Soft
// mode lets every defender contribute prob[role]*For(role) and divides by the
// pool size. A role with no contributors gets Neutral.
func Aggregate(pool []model.Defender, mode alignment.Mode) model.RoleWeights {
	if mode == alignment.Hard {
		return aggregateHard(pool)
	}
	return aggregateSoft(pool)
}

func aggregateHard(pool []model.Defender) model.RoleWeights {
	var sums model.RoleWeights
	var counts [model.NumRoles]int
	for i := range pool {
		d := &pool[i]
		if !d.Role.Valid() {
			continue
		}
		sums[d.Role] += For(d.Role, d.Stats)
		counts[d.Role]++
	}
	var out model.RoleWeights
	for _, r := range model.Roles {
		if counts[r] == 0 {
			out[r] = Neutral
			continue
		}
		out[r] = sums[r] / float64(counts[r])
	}
	return out
}

func aggregateSoft(pool []model.Defender) model.RoleWeights {
	if len(pool) == 0 {
		return model.Uniform(Neutral)
	}
	var out model.RoleWeights
	for _, r := range model.Roles {
		var sum float64
		for i := range pool {
			sum += pool[i].Probs[r] * For(r, pool[i].Stats)
		}
		out[r] = sum / float64(len(pool))
	}
	return out
}
