package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	refs []domain.BookReference
	err  error

	lastBase string
	lastText string
	lastTopK int
}

func (m *mockCorpusService) Build(_ context.Context, _ string, _ []driving.BookPages) (*driving.BuildResult, error) {
	return nil, m.err
}

func (m *mockCorpusService) Inspect(_ context.Context, _ string) (*domain.CorpusSummary, error) {
	return nil, m.err
}

func (m *mockCorpusService) Query(_ context.Context, base, text string, topK int) ([]domain.BookReference, error) {
	m.lastBase = base
	m.lastText = text
	m.lastTopK = topK
	return m.refs, m.err
}

// mockRunService is a mock implementation of driving.RunService.
type mockRunService struct {
	run  *domain.MatchRun
	runs []domain.MatchRun
	err  error

	lastRequest driving.RunRequest
	lastID      string
}

func (m *mockRunService) Run(_ context.Context, req driving.RunRequest) (*domain.MatchRun, error) {
	m.lastRequest = req
	return m.run, m.err
}

func (m *mockRunService) List(_ context.Context) ([]domain.MatchRun, error) {
	return m.runs, m.err
}

func (m *mockRunService) Get(_ context.Context, id string) (*domain.MatchRun, error) {
	m.lastID = id
	return m.run, m.err
}

func (m *mockRunService) Delete(_ context.Context, id string) error {
	m.lastID = id
	return m.err
}

func newTestServer(t *testing.T, corpus *mockCorpusService, runs *mockRunService) *Server {
	t.Helper()
	if corpus == nil {
		corpus = &mockCorpusService{}
	}
	if runs == nil {
		runs = &mockRunService{}
	}
	s, err := NewServer(&Ports{Corpus: corpus, Runs: runs})
	require.NoError(t, err)
	return s
}
