package driving

import (
	"context"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// RunRequest describes one lecture to match.
type RunRequest struct {
	// Lecture is a human-readable lecture name.
	Lecture string

	// CorpusBase is the base path of the book corpus.
	CorpusBase string

	// EmbeddingsPath is the interval embedding array.
	EmbeddingsPath string

	// TextPath is the optional per-interval text mapping.
	TextPath string

	// CleanTranscripts normalises transcript text on load.
	CleanTranscripts bool

	// Persist stores the run when a run store is configured.
	Persist bool

	// Settings overrides the configured matcher settings for this run.
	Settings *domain.MatcherSettings
}

// RunService loads inputs, runs the matcher and manages persisted runs.
type RunService interface {
	// Run loads the corpus and intervals, matches them and returns the run.
	Run(ctx context.Context, req RunRequest) (*domain.MatchRun, error)

	// List returns persisted runs, newest first, without segments.
	List(ctx context.Context) ([]domain.MatchRun, error)

	// Get returns a persisted run with its segments.
	Get(ctx context.Context, id string) (*domain.MatchRun, error)

	// Delete removes a persisted run.
	Delete(ctx context.Context, id string) error
}
