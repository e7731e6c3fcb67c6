package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.MatchRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.MatchRun),
	}
}

// Save stores a run, replacing any run with the same ID.
func (s *RunStore) Save(_ context.Context, run *domain.MatchRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *run
	stored.Segments = append([]domain.LectureSegment(nil), run.Segments...)
	s.runs[run.ID] = stored
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(_ context.Context, id string) (*domain.MatchRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	run.Segments = append([]domain.LectureSegment(nil), run.Segments...)
	return &run, nil
}

// List returns all runs, newest first, without segments.
func (s *RunStore) List(_ context.Context) ([]domain.MatchRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]domain.MatchRun, 0, len(s.runs))
	for _, run := range s.runs {
		run.Segments = nil
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Delete removes a run by ID.
func (s *RunStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}
