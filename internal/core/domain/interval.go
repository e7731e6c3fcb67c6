package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is the atomic alignment unit: a fixed wall-clock slice of the lecture.
// Index order is temporal order; indices are 0-based and gapless.
type Interval struct {
	// Index is the 0-based position in the lecture.
	Index int

	// Transcript is the audio transcript snippet. May be empty.
	Transcript string

	// VisualText is the visual-description snippet. May be empty.
	VisualText string

	// Embedding is the fused audio+visual vector of the interval.
	Embedding []float32
}

// IntervalText is the per-interval text carried by the transcript mapping.
type IntervalText struct {
	Transcript string `json:"transcript"`
	VideoText  string `json:"video_text"`
}

// TranscriptKeyPrefix prefixes every key of the per-interval text mapping.
const TranscriptKeyPrefix = "segment_"

// TranscriptKey returns the mapping key of interval index under the given key base.
func TranscriptKey(index, base int) string {
	return TranscriptKeyPrefix + strconv.Itoa(index+base)
}

// ParseTranscriptKey converts a mapping key back to a 0-based interval index.
func ParseTranscriptKey(key string, base int) (int, error) {
	if !strings.HasPrefix(key, TranscriptKeyPrefix) {
		return 0, fmt.Errorf("%w: key %q lacks %q prefix", ErrInvalidInput, key, TranscriptKeyPrefix)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(key, TranscriptKeyPrefix))
	if err != nil {
		return 0, fmt.Errorf("%w: key %q: %w", ErrInvalidInput, key, err)
	}
	return n - base, nil
}

// ValidateIntervals checks indices are 0-based, contiguous and every embedding
// has the same size. dims of 0 accepts whatever size the first interval has.
func ValidateIntervals(intervals []Interval, dims int) error {
	for i := range intervals {
		if intervals[i].Index != i {
			return fmt.Errorf("%w: interval at position %d has index %d", ErrInvalidInput, i, intervals[i].Index)
		}
		if dims == 0 {
			dims = len(intervals[i].Embedding)
		}
		if len(intervals[i].Embedding) != dims {
			return &DimensionError{Expected: dims, Got: len(intervals[i].Embedding), Context: fmt.Sprintf("interval %d", i)}
		}
	}
	return nil
}
