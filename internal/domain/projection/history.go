package projection

import (
	"fmt"
	"sync"
)

// formWindow is how many preceding weeks feed the recent-form multiplier.
const formWindow = 3

// History accumulates each receiver's adjusted points by week.
//
// Recent form reads the weeks before the one being projected, so a
// receiver's weeks must be recorded in non-decreasing order. Record enforces
// this; callers must also make sure no two goroutines project the same
// receiver at once. Different receivers may be recorded concurrently.
type History struct {
	mu        sync.RWMutex
	receivers map[string]*receiverHistory
}

type receiverHistory struct {
	points map[int]float64
	last   int
}

// NewHistory returns an empty accumulator.
func NewHistory() *History {
	return &History{receivers: make(map[string]*receiverHistory)}
}

// Record stores adjusted points for receiver in week. Re-recording the
// latest week overwrites it; recording an earlier week fails.
func (h *History) Record(receiver string, week int, adjusted float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	rh, ok := h.receivers[receiver]
	if !ok {
		rh = &receiverHistory{points: make(map[int]float64), last: week}
		h.receivers[receiver] = rh
	}
	if week < rh.last {
		return fmt.Errorf("%w: %s week %d after week %d", ErrOutOfOrder, receiver, week, rh.last)
	}
	rh.points[week] = adjusted
	rh.last = week
	return nil
}

// Window returns the recorded points for the formWindow weeks before week,
// oldest first. Weeks without a record (byes) are skipped.
func (h *History) Window(receiver string, week int) []float64 {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	rh, ok := h.receivers[receiver]
	if !ok {
		return nil
	}
	var out []float64
	for w := week - formWindow; w < week; w++ {
		if v, ok := rh.points[w]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Weeks returns how many weeks are recorded for receiver.
func (h *History) Weeks(receiver string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if rh, ok := h.receivers[receiver]; ok {
		return len(rh.points)
	}
	return 0
}
