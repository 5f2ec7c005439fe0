package repository

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/okian/yaculator/internal/domain/model"
)

const defaultMaxLimit = 500

// snapshot is immutable once published.
type snapshot struct {
	byWeek    map[int][]model.Result
	index     map[weekReceiver]int
	weeks     []int
	summaries []model.TeamSummary
	count     int
}

type weekReceiver struct {
	week     int
	receiver string
}

// MemoryStore is an in-memory Store. Readers see a consistent run: Replace
// builds a new snapshot and publishes it atomically.
type MemoryStore struct {
	snap     atomic.Pointer[snapshot]
	maxLimit int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{maxLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(&snapshot{byWeek: map[int][]model.Result{}, index: map[weekReceiver]int{}})
	return s
}

// rankedBefore orders by adjusted points desc, then receiver asc.
func rankedBefore(a, b *model.Result) bool {
	if a.AdjustedPoints != b.AdjustedPoints {
		return a.AdjustedPoints > b.AdjustedPoints
	}
	return a.Receiver < b.Receiver
}

// Replace implements Store.
func (s *MemoryStore) Replace(_ context.Context, results []model.Result, summaries []model.TeamSummary) error {
	next := &snapshot{
		byWeek:    make(map[int][]model.Result),
		index:     make(map[weekReceiver]int, len(results)),
		summaries: append([]model.TeamSummary(nil), summaries...),
		count:     len(results),
	}
	for i := range results {
		next.byWeek[results[i].Week] = append(next.byWeek[results[i].Week], results[i])
	}
	for week, rows := range next.byWeek {
		sort.SliceStable(rows, func(i, j int) bool { return rankedBefore(&rows[i], &rows[j]) })
		for i := range rows {
			key := weekReceiver{week: week, receiver: rows[i].Receiver}
			if _, dup := next.index[key]; dup {
				return fmt.Errorf("duplicate projection for %s week %d", rows[i].Receiver, week)
			}
			next.index[key] = i
		}
		next.weeks = append(next.weeks, week)
	}
	sort.Ints(next.weeks)
	s.snap.Store(next)
	return nil
}

// TopN implements Store.
func (s *MemoryStore) TopN(_ context.Context, week, n int) ([]Entry, error) {
	if n <= 0 || n > s.maxLimit {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidLimit, n, s.maxLimit)
	}
	rows := s.snap.Load().byWeek[week]
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = Entry{Rank: i + 1, Of: len(rows), Result: rows[i]}
	}
	return out, nil
}

// Rank implements Store.
func (s *MemoryStore) Rank(_ context.Context, receiver string, week int) (Entry, error) {
	snap := s.snap.Load()
	i, ok := snap.index[weekReceiver{week: week, receiver: receiver}]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s week %d", ErrNotFound, receiver, week)
	}
	rows := snap.byWeek[week]
	return Entry{Rank: i + 1, Of: len(rows), Result: rows[i]}, nil
}

// Summaries implements Store.
func (s *MemoryStore) Summaries(_ context.Context) []model.TeamSummary {
	return append([]model.TeamSummary(nil), s.snap.Load().summaries...)
}

// Weeks implements Store.
func (s *MemoryStore) Weeks(_ context.Context) []int {
	return append([]int(nil), s.snap.Load().weeks...)
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return s.snap.Load().count
}
