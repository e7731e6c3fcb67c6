package driven

import (
	"context"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// RunStore persists completed match runs.
type RunStore interface {
	// Save stores a run and all of its segments, replacing an existing run with the same ID.
	Save(ctx context.Context, run *domain.MatchRun) error

	// Get retrieves a run with its segments. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.MatchRun, error)

	// List returns all runs, newest first, without segments.
	List(ctx context.Context) ([]domain.MatchRun, error)

	// Delete removes a run and its segments.
	Delete(ctx context.Context, id string) error
}
