package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
	"github.com/custodia-labs/scribe/internal/logger"
)

// Ensure RunService implements the interface.
var _ driving.RunService = (*RunService)(nil)

// RunService loads lecture inputs, runs the matcher and manages stored runs.
type RunService struct {
	corpora   driven.CorpusStore
	intervals driven.IntervalSource
	runStore  driven.RunStore
	settings  domain.MatcherSettings
	observer  driven.MatchObserver
	now       func() time.Time
}

// NewRunService creates a new run service.
// The runStore parameter is optional (can be nil); runs are then never persisted.
func NewRunService(
	corpora driven.CorpusStore,
	intervals driven.IntervalSource,
	runStore driven.RunStore,
	settings domain.MatcherSettings,
	observer driven.MatchObserver,
) *RunService {
	return &RunService{
		corpora:   corpora,
		intervals: intervals,
		runStore:  runStore,
		settings:  settings,
		observer:  observer,
		now:       time.Now,
	}
}

// Run loads the corpus and intervals, matches them and optionally persists the run.
func (s *RunService) Run(ctx context.Context, req driving.RunRequest) (*domain.MatchRun, error) {
	if req.CorpusBase == "" {
		return nil, fmt.Errorf("%w: corpus is required", domain.ErrInvalidInput)
	}
	if req.EmbeddingsPath == "" {
		return nil, fmt.Errorf("%w: interval embeddings are required", domain.ErrInvalidInput)
	}
	if req.Persist && s.runStore == nil {
		return nil, domain.ErrRunStorageDisabled
	}

	settings := s.settings
	if req.Settings != nil {
		settings = *req.Settings
	}

	processor, err := NewProcessor(settings, s.observer)
	if err != nil {
		return nil, err
	}

	logger.Section("Match Run")
	logger.Debug("Corpus: %s", req.CorpusBase)
	logger.Debug("Embeddings: %s, text: %q, key base: %d",
		req.EmbeddingsPath, req.TextPath, settings.TranscriptKeyBase)

	corpus, err := s.corpora.Load(ctx, req.CorpusBase)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	logger.Info("Loaded corpus: %d chunks, %d dimensions", corpus.Len(), corpus.Dimensions)

	intervals, err := s.intervals.LoadIntervals(ctx, driven.IntervalRequest{
		EmbeddingsPath:   req.EmbeddingsPath,
		TextPath:         req.TextPath,
		KeyBase:          settings.TranscriptKeyBase,
		CleanTranscripts: req.CleanTranscripts,
	})
	if err != nil {
		return nil, fmt.Errorf("load intervals: %w", err)
	}
	logger.Info("Loaded %d intervals (%d per segment)", len(intervals), settings.EmbeddingsPerSegment())

	segments, err := processor.Match(ctx, corpus, intervals)
	if err != nil {
		return nil, err
	}

	lecture := req.Lecture
	if lecture == "" {
		lecture = lectureName(req.EmbeddingsPath)
	}
	run := &domain.MatchRun{
		ID:          uuid.New().String(),
		Lecture:     lecture,
		Corpus:      req.CorpusBase,
		Settings:    settings,
		CreatedAt:   s.now().UTC(),
		NumSegments: len(segments),
		Segments:    segments,
	}

	if req.Persist {
		if err := s.runStore.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		logger.Debug("Saved run %s", run.ID)
	}

	return run, nil
}

// List returns stored runs, newest first.
func (s *RunService) List(ctx context.Context) ([]domain.MatchRun, error) {
	if s.runStore == nil {
		return nil, domain.ErrRunStorageDisabled
	}
	return s.runStore.List(ctx)
}

// Get returns a stored run with its segments.
func (s *RunService) Get(ctx context.Context, id string) (*domain.MatchRun, error) {
	if s.runStore == nil {
		return nil, domain.ErrRunStorageDisabled
	}
	return s.runStore.Get(ctx, id)
}

// Delete removes a stored run.
func (s *RunService) Delete(ctx context.Context, id string) error {
	if s.runStore == nil {
		return domain.ErrRunStorageDisabled
	}
	return s.runStore.Delete(ctx, id)
}

// lectureName derives a lecture name from the embeddings file name.
func lectureName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimSuffix(name, "_embeddings")
}
