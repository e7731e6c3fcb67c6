package services

import (
	"fmt"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// Aggregator partitions ordered intervals into fixed-size segment windows.
type Aggregator struct {
	perSegment int
}

// NewAggregator creates an aggregator grouping perSegment intervals per segment.
func NewAggregator(perSegment int) *Aggregator {
	return &Aggregator{perSegment: perSegment}
}

// Aggregate returns ceil(len(intervals)/perSegment) windows covering every
// interval exactly once. The final window may be partial.
// Returns domain.ErrNoSegmentsFound when intervals is empty.
func (a *Aggregator) Aggregate(intervals []domain.Interval) ([]domain.SegmentWindow, error) {
	total := len(intervals)
	if total == 0 {
		return nil, domain.ErrNoSegmentsFound
	}
	if a.perSegment <= 0 {
		return nil, fmt.Errorf("%w: embeddings per segment must be positive, got %d",
			domain.ErrInvalidSettings, a.perSegment)
	}

	n := (total + a.perSegment - 1) / a.perSegment
	windows := make([]domain.SegmentWindow, 0, n)
	for i := range n {
		start := i * a.perSegment
		end := min(start+a.perSegment, total)

		embeddings := make([][]float32, 0, end-start)
		audio := make([]string, 0, end-start)
		video := make([]string, 0, end-start)
		for _, iv := range intervals[start:end] {
			embeddings = append(embeddings, iv.Embedding)
			audio = append(audio, iv.Transcript)
			video = append(video, iv.VisualText)
		}

		windows = append(windows, domain.SegmentWindow{
			ID:         i,
			Start:      start,
			End:        end,
			Embeddings: embeddings,
			AudioText:  domain.JoinSnippets(audio),
			VideoText:  domain.JoinSnippets(video),
		})
	}
	return windows, nil
}
