// Package matchup resolves which defense a receiver faces in a given week.
package matchup

import (
	"github.com/okian/yaculator/internal/domain/model"
)

// SchemeMap holds the man/zone label of each (week, team) pair.
type SchemeMap struct {
	entries map[key]model.Scheme
}

type key struct {
	week int
	team string
}

// NewSchemeMap returns an empty scheme map.
func NewSchemeMap() *SchemeMap {
	return &SchemeMap{entries: make(map[key]model.Scheme)}
}

// Add labels (week, team) from its man and zone coverage rates.
func (m *SchemeMap) Add(week int, team string, manRate, zoneRate float64) {
	m.Set(week, team, model.SchemeFromRates(manRate, zoneRate))
}

// Set stores an explicit scheme for (week, team).
func (m *SchemeMap) Set(week int, team string, s model.Scheme) {
	m.entries[key{week: week, team: team}] = s
}

// Lookup returns the scheme for (week, team).
func (m *SchemeMap) Lookup(week int, team string) (model.Scheme, bool) {
	if m == nil {
		return model.Unknown, false
	}
	s, ok := m.entries[key{week: week, team: team}]
	return s, ok
}

// Len returns the number of labeled pairs.
func (m *SchemeMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Pools groups defenders by team.
type Pools map[string][]model.Defender

// GroupDefenders builds Pools from a flat defender list, keeping input order
// within each team.
func GroupDefenders(defenders []model.Defender) Pools {
	p := make(Pools)
	for _, d := range defenders {
		p[d.Team] = append(p[d.Team], d)
	}
	return p
}

// Context is a fully resolved matchup for one receiver and week.
type Context struct {
	Week     int
	Receiver model.Receiver
	Opponent string
	Scheme   model.Scheme
	Pool     []model.Defender
}

// Resolver finds opponents, schemes and defender pools.
type Resolver struct {
	schedule        *model.Schedule
	pools           Pools
	schemes         *SchemeMap
	defaultManBlend bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDefaultManBlend controls the scheme used when a (week, opponent) pair
// has no coverage tag: man when enabled, unknown otherwise.
func WithDefaultManBlend(enabled bool) Option {
	return func(r *Resolver) {
		r.defaultManBlend = enabled
	}
}

// NewResolver builds a Resolver over read-only inputs. It never mutates them,
// so one Resolver can be shared by many workers.
func NewResolver(schedule *model.Schedule, pools Pools, schemes *SchemeMap, opts ...Option) *Resolver {
	r := &Resolver{
		schedule:        schedule,
		pools:           pools,
		schemes:         schemes,
		defaultManBlend: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the matchup for rec in week. The boolean is false when the
// receiver's team has no game that week. An opponent without listed
// defenders resolves with an empty pool.
func (r *Resolver) Resolve(rec model.Receiver, week int) (Context, bool) {
	opponent, ok := r.schedule.Opponent(rec.Team, week)
	if !ok {
		return Context{}, false
	}

	scheme, ok := r.schemes.Lookup(week, opponent)
	if !ok {
		scheme = model.Unknown
		if r.defaultManBlend {
			scheme = model.Man
		}
	}

	return Context{
		Week:     week,
		Receiver: rec,
		Opponent: opponent,
		Scheme:   scheme,
		Pool:     r.pools[opponent],
	}, true
}
