// Package repository holds the latest run's projections for ranked reads.
package repository

import (
	"context"

	"github.com/okian/yaculator/internal/domain/model"
)

// Entry is a projection with its position among the week's receivers.
type Entry struct {
	Rank   int
	Of     int
	Result model.Result
}

// Store provides read/write access to projection results.
type Store interface {
	// Replace swaps in a new run's results and team summaries.
	Replace(ctx context.Context, results []model.Result, summaries []model.TeamSummary) error

	// TopN returns the week's top-n projections by adjusted points desc,
	// receiver name asc.
	TopN(ctx context.Context, week, n int) ([]Entry, error)

	// Rank returns one receiver's entry for week. Returns ErrNotFound if the
	// receiver has no projection that week.
	Rank(ctx context.Context, receiver string, week int) (Entry, error)

	// Summaries returns the team summaries of the current run.
	Summaries(ctx context.Context) []model.TeamSummary

	// Weeks returns the weeks present, ascending.
	Weeks(ctx context.Context) []int

	// Count returns the number of stored projections.
	Count(ctx context.Context) int
}
