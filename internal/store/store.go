// Package store persists signal runs. Runs are append-only: each
// execution produces a new, uniquely identified record and prior runs are
// never overwritten or deleted.
package store

import (
	"context"
	"time"

	"github.com/sells-group/buyer-signals/internal/model"
)

// RunInfo is a summary row for run listings.
type RunInfo struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Buyers      int       `json:"buyers"`
}

// Store defines run persistence for the signal pipeline.
type Store interface {
	// SaveRun persists a run and its rendered Markdown summary.
	SaveRun(ctx context.Context, run *model.Run, summary string) error

	// LatestRun returns the most recently persisted run, or (nil, nil)
	// when no usable prior run exists. An unreadable baseline degrades to
	// "no baseline" rather than failing the caller.
	LatestRun(ctx context.Context) (*model.Run, error)

	// GetRun returns a run by id.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// ListRuns returns up to limit runs in reverse chronological order.
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)

	// Lock acquires the exclusive run lease and returns its release
	// function. Two concurrent runs would make baseline diffs
	// non-deterministic, so the pipeline holds this for a full execution.
	Lock(ctx context.Context) (func(), error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
