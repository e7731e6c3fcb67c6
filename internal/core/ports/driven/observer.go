package driven

import "github.com/custodia-labs/scribe/internal/core/domain"

// RankStats summarises the averaged similarity row of one segment.
type RankStats struct {
	Min float64
	Max float64
}

// MatchObserver receives progress events from the segment processor.
// Events arrive in segment order from a single goroutine.
// Implementations must not modify the values they are given.
type MatchObserver interface {
	// SegmentStarted is called before a segment is matched.
	SegmentStarted(window domain.SegmentWindow, total int)

	// BookMatches is called with the references that survived the threshold.
	BookMatches(segmentID int, stats RankStats, refs []domain.BookReference)

	// ContextResolved is called with the prior segments included as context.
	ContextResolved(segmentID int, context []int)

	// SegmentCompleted is called once the record is assembled.
	SegmentCompleted(segment domain.LectureSegment)

	// RunCompleted is called after the last segment.
	RunCompleted(segments int)
}
