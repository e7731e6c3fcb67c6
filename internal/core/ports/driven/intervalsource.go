package driven

import (
	"context"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// IntervalRequest locates the per-interval inputs of one lecture.
type IntervalRequest struct {
	// EmbeddingsPath is the [total_intervals, D] array of fused interval embeddings.
	EmbeddingsPath string

	// TextPath is the optional per-interval text mapping. Empty means no text.
	TextPath string

	// KeyBase is added to an interval index to form its text mapping key.
	KeyBase int

	// CleanTranscripts normalises transcript text on load.
	CleanTranscripts bool
}

// IntervalSource loads lecture intervals produced by the upstream
// transcription and captioning stages.
type IntervalSource interface {
	// LoadIntervals returns intervals in index order (0-based, gapless).
	// Text keys outside the interval range fail with domain.ErrTranscriptKeyRange.
	LoadIntervals(ctx context.Context, req IntervalRequest) ([]domain.Interval, error)
}
