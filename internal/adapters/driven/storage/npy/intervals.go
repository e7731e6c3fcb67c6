package npy

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/logger"
)

// Ensure IntervalSource implements the interface.
var _ driven.IntervalSource = (*IntervalSource)(nil)

// IntervalSource loads lecture intervals from an .npy array and an optional
// per-interval text mapping.
type IntervalSource struct{}

// NewIntervalSource creates a new interval source.
func NewIntervalSource() *IntervalSource {
	return &IntervalSource{}
}

// LoadIntervals returns one interval per array row, in row order.
// Text keys are validated against the row count under the request's key base;
// keys inside the range but absent from the mapping leave the text empty.
func (s *IntervalSource) LoadIntervals(ctx context.Context, req driven.IntervalRequest) ([]domain.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, dims, err := ReadMatrix(req.EmbeddingsPath)
	if err != nil {
		return nil, fmt.Errorf("interval embeddings: %w", err)
	}
	logger.Debug("Loaded %d interval embeddings (%d dimensions) from %s", len(rows), dims, req.EmbeddingsPath)

	intervals := make([]domain.Interval, len(rows))
	for i, row := range rows {
		intervals[i] = domain.Interval{Index: i, Embedding: row}
	}

	if req.TextPath == "" {
		return intervals, nil
	}

	texts, err := readIntervalText(req.TextPath)
	if err != nil {
		return nil, err
	}

	// Sorted keys give a deterministic first error.
	for _, key := range slices.Sorted(maps.Keys(texts)) {
		idx, err := domain.ParseTranscriptKey(key, req.KeyBase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req.TextPath, err)
		}
		if idx < 0 || idx >= len(intervals) {
			return nil, fmt.Errorf("%w: %s: key %q maps to interval %d, want [0, %d) with key base %d",
				domain.ErrTranscriptKeyRange, req.TextPath, key, idx, len(intervals), req.KeyBase)
		}

		text := texts[key]
		if req.CleanTranscripts {
			text.Transcript = domain.CleanTranscript(text.Transcript)
		}
		intervals[idx].Transcript = text.Transcript
		intervals[idx].VisualText = text.VideoText
	}

	logger.Debug("Attached text to %d of %d intervals", len(texts), len(intervals))
	return intervals, nil
}

func readIntervalText(path string) (map[string]domain.IntervalText, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("interval text: %w", err)
	}
	var texts map[string]domain.IntervalText
	if err := json.Unmarshal(raw, &texts); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}
	return texts, nil
}
