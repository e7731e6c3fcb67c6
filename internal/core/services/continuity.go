package services

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// ContinuityDetector decides which immediately preceding segments are
// topically continuous with the current one.
type ContinuityDetector struct {
	threshold float64
}

// NewContinuityDetector creates a detector accepting links scoring at least threshold.
func NewContinuityDetector(threshold float64) *ContinuityDetector {
	return &ContinuityDetector{threshold: threshold}
}

// Detect walks history backward from the most recent segment and returns the
// contiguous run of segments similar to current, in ascending order.
// The walk stops at the first segment scoring below the threshold; older
// segments are never examined.
func (d *ContinuityDetector) Detect(current [][]float32, history *SegmentHistory) ([]int, error) {
	included := []int{}
	if history.Len() == 0 {
		return included, nil
	}

	rep, err := domain.Representative(current)
	if err != nil {
		return nil, fmt.Errorf("current segment representative: %w", err)
	}

	for j := history.Len() - 1; j >= 0; j-- {
		sim, err := d.similarity(rep, history.At(j).Representative)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", j, err)
		}
		if sim < d.threshold {
			break
		}
		included = append(included, j)
	}

	slices.Reverse(included)
	return included, nil
}

// similarity compares two unit vectors.
func (d *ContinuityDetector) similarity(a, b []float32) (float64, error) {
	sim, err := domain.Dot(a, b)
	if err != nil {
		return 0, err
	}
	return domain.ClampSimilarity(sim), nil
}
