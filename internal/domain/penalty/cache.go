package penalty

import (
	"sync"

	"github.com/okian/yaculator/internal/domain/alignment"
	"github.com/okian/yaculator/internal/domain/model"
	"github.com/okian/yaculator/pkg/metrics"
)

type cacheKey struct {
	team string
	mode alignment.Mode
}

// Cache memoizes aggregated penalties per opposing team. Defender pools are
// fixed for a run, so a team's penalties are the same every week.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]model.RoleWeights
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]model.RoleWeights)}
}

// Get returns the cached penalties for team, computing them from pool on a
// miss.
func (c *Cache) Get(team string, mode alignment.Mode, pool []model.Defender) model.RoleWeights {
	k := cacheKey{team: team, mode: mode}

	c.mu.RLock()
	p, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		metrics.RecordPenaltyCacheHit()
		return p
	}

	metrics.RecordPenaltyCacheMiss()
	p = Aggregate(pool, mode)

	c.mu.Lock()
	if existing, ok := c.entries[k]; ok {
		p = existing
	} else {
		c.entries[k] = p
	}
	c.mu.Unlock()
	return p
}

// Len returns the number of cached teams.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
