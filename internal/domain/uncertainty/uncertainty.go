// Package uncertainty draws Monte Carlo bands around a point projection.
package uncertainty

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"github.com/okian/yaculator/internal/domain/model"
)

// Default sampler settings.
const (
	DefaultCount  = 100
	DefaultStdDev = 2.0
)

// Sampler draws Count normal samples with the given standard deviation.
// It holds no state between calls.
type Sampler struct {
	Count  int
	StdDev float64
}

// Enabled reports whether the sampler draws anything.
func (s Sampler) Enabled() bool {
	return s.Count > 0
}

// Percentiles returns the 25th, 50th and 75th percentile of Count draws from
// N(point, StdDev). The result is fully determined by rng's state.
func (s Sampler) Percentiles(point float64, rng *rand.Rand) (model.Band, bool) {
	if !s.Enabled() || rng == nil {
		return model.Band{}, false
	}
	draws := make([]float64, s.Count)
	for i := range draws {
		draws[i] = rng.NormFloat64()*s.StdDev + point
	}
	sort.Float64s(draws)
	return model.Band{
		P25: Percentile(0.25, draws),
		P50: Percentile(0.50, draws),
		P75: Percentile(0.75, draws),
	}, true
}

// Percentile returns the p-quantile of sorted, interpolating linearly between
// the closest ranks at h = p*(n-1). This is numpy's default "linear" method;
// gonum's stat.LinInterp places ranks differently and returns the lower
// middle value as the median of an even-length sample.
func Percentile(p float64, sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return math.NaN()
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// SeedFor derives a per-(receiver, week) seed from a run seed so draws do not
// depend on which worker handled the receiver.
func SeedFor(seed int64, receiver string, week int) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(seed))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(receiver))
	binary.LittleEndian.PutUint64(buf[:], uint64(week))
	_, _ = h.Write(buf[:])
	return int64(h.Sum64())
}

// RandFor returns a generator seeded by SeedFor.
func RandFor(seed int64, receiver string, week int) *rand.Rand {
	return rand.New(rand.NewSource(SeedFor(seed, receiver, week))) //nolint:gosec // reproducible simulation, not crypto
}
