package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// Ensure Processor implements the interface.
var _ driving.MatchingService = (*Processor)(nil)

// Processor drives the per-segment pipeline: aggregation, book ranking,
// continuity detection and record assembly, in strict segment order.
//
// Segment i is ranked with its own embeddings only and compared against the
// history of segments 0..i-1. It joins the history after its record is built.
type Processor struct {
	settings   domain.MatcherSettings
	ranker     *Ranker
	detector   *ContinuityDetector
	aggregator *Aggregator
	observer   driven.MatchObserver
}

// NewProcessor creates a processor for the given settings.
// A nil observer discards events.
func NewProcessor(settings domain.MatcherSettings, observer driven.MatchObserver) (*Processor, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Processor{
		settings:   settings,
		ranker:     NewRanker(settings.SimilarityThreshold, settings.TopK),
		detector:   NewContinuityDetector(settings.SimilarityThreshold),
		aggregator: NewAggregator(settings.EmbeddingsPerSegment()),
		observer:   observer,
	}, nil
}

// Match processes intervals against corpus and returns one record per segment.
func (p *Processor) Match(
	ctx context.Context, corpus *domain.Corpus, intervals []domain.Interval,
) ([]domain.LectureSegment, error) {
	if corpus == nil {
		return nil, fmt.Errorf("%w: corpus is required", domain.ErrInvalidInput)
	}
	if p.settings.Dimensions != 0 && corpus.Dimensions != p.settings.Dimensions {
		return nil, &domain.DimensionError{Expected: p.settings.Dimensions, Got: corpus.Dimensions, Context: "corpus"}
	}
	if err := domain.ValidateIntervals(intervals, corpus.Dimensions); err != nil {
		return nil, err
	}

	windows, err := p.aggregator.Aggregate(intervals)
	if err != nil {
		return nil, err
	}

	// Ranking has no cross-segment dependency, so it may run ahead of the
	// sequential history walk. Results stay indexed by segment.
	var ranked [][]float64
	if p.settings.Parallelism > 1 {
		ranked, err = p.rankAll(ctx, windows, corpus)
		if err != nil {
			return nil, err
		}
	}

	history := NewSegmentHistory()
	segments := make([]domain.LectureSegment, 0, len(windows))
	segmentSeconds := p.settings.SegmentSeconds()

	for i := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := windows[i]
		p.observer.SegmentStarted(w, len(windows))

		var scores []float64
		if ranked != nil {
			scores = ranked[i]
		} else {
			scores, err = p.ranker.Scores(w.Embeddings, corpus)
			if err != nil {
				return nil, fmt.Errorf("rank segment %d: %w", w.ID, err)
			}
		}
		refs := p.ranker.Select(scores, corpus)
		p.observer.BookMatches(w.ID, scoreStats(scores), refs)

		contextIDs, err := p.detector.Detect(w.Embeddings, history)
		if err != nil {
			return nil, fmt.Errorf("continuity for segment %d: %w", w.ID, err)
		}
		p.observer.ContextResolved(w.ID, contextIDs)

		start, end := domain.SegmentTimestamps(w.ID, segmentSeconds)
		segment := domain.LectureSegment{
			SegmentID:        w.ID,
			TimestampStart:   start,
			TimestampEnd:     end,
			LectureAudioText: w.AudioText,
			LectureVideoText: w.VideoText,
			BookReferences:   refs,
			ContextSegments:  contextIDs,
			NumEmbeddings:    w.Count(),
		}
		segments = append(segments, segment)
		p.observer.SegmentCompleted(segment)

		history, err = history.Append(w.Embeddings)
		if err != nil {
			return nil, err
		}
	}

	p.observer.RunCompleted(len(segments))
	return segments, nil
}

// rankAll scores every window concurrently, bounded by the configured parallelism.
func (p *Processor) rankAll(
	ctx context.Context, windows []domain.SegmentWindow, corpus *domain.Corpus,
) ([][]float64, error) {
	ranked := make([][]float64, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.Parallelism)

	for i := range windows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores, err := p.ranker.Scores(windows[i].Embeddings, corpus)
			if err != nil {
				return fmt.Errorf("rank segment %d: %w", windows[i].ID, err)
			}
			ranked[i] = scores
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ranked, nil
}

func scoreStats(scores []float64) driven.RankStats {
	if len(scores) == 0 {
		return driven.RankStats{}
	}
	stats := driven.RankStats{Min: scores[0], Max: scores[0]}
	for _, s := range scores[1:] {
		stats.Min = min(stats.Min, s)
		stats.Max = max(stats.Max, s)
	}
	return stats
}
