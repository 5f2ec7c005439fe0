// Package weather derives per-game environment boosts from stadium
// profiles, climatology, and forecasts.
package weather

import (
	"fmt"
	"strings"

	"github.com/okian/yaculator/internal/domain/model"
)

// Boost constants.
const (
	DomeBoost    = 1.05
	NeutralBoost = 1.0

	lateSeasonWeek = 12
	midSeasonWeek  = 8

	lateColdFactor = 0.95
	lateWindFactor = 0.97
	midColdFactor  = 0.98
	altitudeFactor = 0.98

	naturalTurfFactor    = 0.99
	artificialTurfFactor = 1.02
	humidityYesFactor    = 1.01
	humidityNoneFactor   = 0.99
)

// Condition labels recorded next to a boost.
const (
	ConditionDome        = "Dome"
	ConditionClimatology = "Climatology"
	ConditionUnknown     = "Unknown"
	ConditionUnavailable = "Unavailable"
	ConditionNormal      = "Normal"
)

// Stadium is a team's home venue profile.
type Stadium struct {
	Team            string
	State           string
	Latitude        float64
	Longitude       float64
	Dome            bool
	ColdProne       bool
	WindProne       bool
	HighAltitude    bool
	TurfType        string
	HumidityControl string
}

// Phase is an ENSO climate phase.
type Phase string

// Climate phases.
const (
	ElNino  Phase = "ElNino"
	LaNina  Phase = "LaNina"
	Neutral Phase = "Neutral"
)

// ParsePhase accepts the phase names case-insensitively; empty is Neutral.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "neutral":
		return Neutral, nil
	case "elnino", "el nino", "el_nino":
		return ElNino, nil
	case "lanina", "la nina", "la_nina":
		return LaNina, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// Region is a coarse US climate region.
type Region string

// Climate regions.
const (
	Northeast     Region = "Northeast"
	Midwest       Region = "Midwest"
	Southeast     Region = "Southeast"
	Southwest     Region = "Southwest"
	Northwest     Region = "Northwest"
	NeutralRegion Region = "Neutral"
)

var regionStates = map[Region][]string{
	Northeast: {"NY", "PA", "MA", "NJ", "CT", "RI", "NH", "VT", "ME"},
	Midwest:   {"IL", "OH", "MI", "WI", "IN", "IA", "MN", "MO", "NE", "KS"},
	Southeast: {"FL", "GA", "SC", "NC", "AL", "TN", "MS", "KY", "VA"},
	Southwest: {"AZ", "NM", "TX", "OK"},
	Northwest: {"WA", "OR", "ID", "MT", "WY", "CO", "UT"},
}

var stateRegion = func() map[string]Region {
	m := make(map[string]Region)
	for r, states := range regionStates {
		for _, s := range states {
			m[s] = r
		}
	}
	return m
}()

// ClassifyRegion maps a two-letter state code to its region.
func ClassifyRegion(state string) Region {
	if r, ok := stateRegion[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return r
	}
	return NeutralRegion
}

var phaseModifiers = map[Phase]map[Region]float64{
	ElNino: {Northeast: 1.1, Midwest: 1.1, Southwest: 0.95},
	LaNina: {Northwest: 1.1, Southeast: 1.1, Midwest: 0.95},
}

// PhaseModifier returns the climate phase multiplier for a region.
func PhaseModifier(p Phase, r Region) float64 {
	if v, ok := phaseModifiers[p][r]; ok {
		return v
	}
	return NeutralBoost
}

// Estimate returns the climatology boost for a game at s in week, rounded to
// three decimals.
func Estimate(s Stadium, week int, phase Phase) float64 {
	if s.Dome {
		return DomeBoost
	}

	boost := NeutralBoost
	switch {
	case week >= lateSeasonWeek:
		if s.ColdProne {
			boost *= lateColdFactor
		}
		if s.WindProne {
			boost *= lateWindFactor
		}
	case week >= midSeasonWeek:
		if s.ColdProne {
			boost *= midColdFactor
		}
	}

	if s.HighAltitude {
		boost *= altitudeFactor
	}

	turf := strings.ToLower(s.TurfType)
	switch {
	case strings.Contains(turf, "natural"):
		boost *= naturalTurfFactor
	case strings.Contains(turf, "hybrid"):
	case strings.Contains(turf, "artificial"):
		boost *= artificialTurfFactor
	}

	humidity := strings.ToLower(s.HumidityControl)
	switch {
	case strings.Contains(humidity, "yes"):
		boost *= humidityYesFactor
	case strings.Contains(humidity, "partial"):
	default:
		boost *= humidityNoneFactor
	}

	boost *= PhaseModifier(phase, ClassifyRegion(s.State))
	return model.Round(boost, 3)
}
