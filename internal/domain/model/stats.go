package model

import (
	"fmt"
	"math"
)

// CoverageStats is a defender's blended coverage profile.
type CoverageStats struct {
	TargetsAllowed         float64
	CatchRateAllowed       float64
	PasserRatingAllowed    float64
	FantasyPointsPerTarget float64
	FantasyPointsPerGame   float64
	ManSuccessRate         float64
	TargetSeparation       float64
	ManCoverageRate        float64
}

// NewCoverageStats validates s and returns it unchanged. Every field must be
// finite and non-negative.
func NewCoverageStats(s CoverageStats) (CoverageStats, error) {
	fields := []struct {
		name string
		v    float64
	}{
		{"targets_allowed", s.TargetsAllowed},
		{"catch_rate_allowed", s.CatchRateAllowed},
		{"passer_rating_allowed", s.PasserRatingAllowed},
		{"fpts_per_target_allowed", s.FantasyPointsPerTarget},
		{"fpts_per_game_allowed", s.FantasyPointsPerGame},
		{"man_success_rate", s.ManSuccessRate},
		{"target_separation", s.TargetSeparation},
		{"man_coverage_rate", s.ManCoverageRate},
	}
	for _, f := range fields {
		if err := checkNonNegative(f.name, f.v); err != nil {
			return CoverageStats{}, err
		}
	}
	return s, nil
}

// SplitProfile is a receiver's production against one coverage family.
type SplitProfile struct {
	Routes                 float64
	WinRate                float64
	TargetRate             float64
	Separation             float64
	FantasyPointsPerTarget float64
}

// NewSplitProfile validates p. Every field must be finite and non-negative.
func NewSplitProfile(p SplitProfile) (SplitProfile, error) {
	fields := []struct {
		name string
		v    float64
	}{
		{"routes", p.Routes},
		{"win_rate", p.WinRate},
		{"target_rate", p.TargetRate},
		{"separation", p.Separation},
		{"fpts_per_target", p.FantasyPointsPerTarget},
	}
	for _, f := range fields {
		if err := checkNonNegative(f.name, f.v); err != nil {
			return SplitProfile{}, err
		}
	}
	return p, nil
}

func checkNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidStat, name)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s is negative (%g)", ErrInvalidStat, name, v)
	}
	return nil
}
