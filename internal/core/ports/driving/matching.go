package driving

import (
	"context"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// MatchingService aligns lecture intervals to segments and cross-references
// each segment against a book corpus.
type MatchingService interface {
	// Match processes intervals in strict segment order and returns one record per segment.
	// Returns domain.ErrNoSegmentsFound when intervals is empty.
	Match(ctx context.Context, corpus *domain.Corpus, intervals []domain.Interval) ([]domain.LectureSegment, error)
}
