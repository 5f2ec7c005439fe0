package model

// WeekTeam keys per-week team lookups.
type WeekTeam struct {
	Week int
	Team string
}

// Environment is the weather/stadium adjustment for one team's game.
type Environment struct {
	Boost     float64
	Condition string
}

// EnvironmentMap holds environment bundles by (week, team).
type EnvironmentMap map[WeekTeam]Environment

// Boost returns the multiplicative boost for (week, team).
func (m EnvironmentMap) Boost(week int, team string) (float64, bool) {
	e, ok := m[WeekTeam{Week: week, Team: team}]
	if !ok {
		return 0, false
	}
	return e.Boost, true
}

// BoostMap holds bare numeric boosts by (week, team).
type BoostMap map[WeekTeam]float64

// Boost returns the multiplicative boost for (week, team).
func (m BoostMap) Boost(week int, team string) (float64, bool) {
	b, ok := m[WeekTeam{Week: week, Team: team}]
	return b, ok
}
