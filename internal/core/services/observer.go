package services

import (
	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/logger"
)

// Ensure observers implement the interface.
var (
	_ driven.MatchObserver = NopObserver{}
	_ driven.MatchObserver = LogObserver{}
)

// NopObserver discards all match events.
type NopObserver struct{}

func (NopObserver) SegmentStarted(domain.SegmentWindow, int) {}
func (NopObserver) BookMatches(int, driven.RankStats, []domain.BookReference) {}
func (NopObserver) ContextResolved(int, []int) {}
func (NopObserver) SegmentCompleted(domain.LectureSegment) {}
func (NopObserver) RunCompleted(int) {}

// LogObserver writes match progress to the verbose logger.
type LogObserver struct{}

// SegmentStarted logs the segment header and interval range.
func (LogObserver) SegmentStarted(w domain.SegmentWindow, total int) {
	logger.Sectionf("Segment %d/%d", w.ID+1, total)
	logger.Debug("Intervals [%d, %d): %d embeddings", w.Start, w.End, w.Count())
}

// BookMatches logs the similarity range and each accepted reference.
func (LogObserver) BookMatches(segmentID int, stats driven.RankStats, refs []domain.BookReference) {
	logger.Debug("Segment %d similarity range: min=%.4f max=%.4f", segmentID, stats.Min, stats.Max)
	if len(refs) == 0 {
		logger.Info("Segment %d: no book references above threshold", segmentID)
		return
	}
	for i, ref := range refs {
		logger.Debug("  #%d %.4f %s p.%d", i+1, ref.Similarity, ref.BookName, ref.Page)
	}
}

// ContextResolved logs the context segments chosen.
func (LogObserver) ContextResolved(segmentID int, context []int) {
	if len(context) == 0 {
		logger.Debug("Segment %d: no context segments", segmentID)
		return
	}
	logger.Debug("Segment %d: context segments %v", segmentID, context)
}

// SegmentCompleted logs the record summary.
func (LogObserver) SegmentCompleted(s domain.LectureSegment) {
	logger.Info("Segment %d: %.1f-%.1f min, %d references, %d context",
		s.SegmentID, s.TimestampStart, s.TimestampEnd, len(s.BookReferences), len(s.ContextSegments))
}

// RunCompleted logs the number of segments produced.
func (LogObserver) RunCompleted(segments int) {
	logger.Info("Matched %d segments", segments)
}
