package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// HistoryEntry is one processed segment as seen by continuity detection.
type HistoryEntry struct {
	// Embeddings are the segment's interval embeddings.
	Embeddings [][]float32

	// Representative is the normalised mean of Embeddings.
	Representative []float32
}

// SegmentHistory is the append-only record of already processed segments.
// Entry i is segment i. Append never modifies the receiver, so a history
// handed to a detector is a stable snapshot.
type SegmentHistory struct {
	entries []HistoryEntry
}

// NewSegmentHistory returns an empty history.
func NewSegmentHistory() *SegmentHistory {
	return &SegmentHistory{}
}

// Len returns the number of segments recorded.
func (h *SegmentHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// At returns the entry of segment i.
func (h *SegmentHistory) At(i int) HistoryEntry {
	return h.entries[i]
}

// Append returns a new history with batch recorded as the next segment.
func (h *SegmentHistory) Append(batch [][]float32) (*SegmentHistory, error) {
	rep, err := domain.Representative(batch)
	if err != nil {
		return nil, fmt.Errorf("segment %d representative: %w", h.Len(), err)
	}
	entry := HistoryEntry{
		Embeddings:     slices.Clone(batch),
		Representative: rep,
	}
	var entries []HistoryEntry
	if h != nil {
		entries = slices.Clip(h.entries)
	}
	return &SegmentHistory{entries: append(entries, entry)}, nil
}
