package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scribe/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

func runFixture(t *testing.T) (*fakeCorpusStore, *fakeIntervalSource) {
	t.Helper()
	corpora := newFakeCorpusStore()
	require.NoError(t, corpora.Save(context.Background(), "books/physics", []domain.BookChunk{
		{BookName: "Physics", Page: 1, ChunkID: "1_0", Text: "forces", Embedding: []float32{1, 0}},
		{BookName: "Physics", Page: 2, ChunkID: "2_0", Text: "energy", Embedding: []float32{0, 1}},
	}))
	source := &fakeIntervalSource{intervals: testIntervals(4, func(i int) []float32 {
		if i < 2 {
			return []float32{1, 0}
		}
		return []float32{0, 1}
	})}
	return corpora, source
}

// twoIntervalSegments groups two intervals per segment.
func twoIntervalSegments() domain.MatcherSettings {
	s := corpusSettings()
	s.IntervalSeconds = 30
	s.SegmentMinutes = 1
	s.TranscriptKeyBase = 0
	return s
}

func TestRunService_RunAndPersist(t *testing.T) {
	corpora, source := runFixture(t)
	runs := memory.NewRunStore()
	svc := NewRunService(corpora, source, runs, twoIntervalSegments(), nil)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	run, err := svc.Run(context.Background(), driving.RunRequest{
		CorpusBase:       "books/physics",
		EmbeddingsPath:   "/data/lecture01_embeddings.npy",
		TextPath:         "/data/lecture01.json",
		CleanTranscripts: true,
		Persist:          true,
	})

	require.NoError(t, err)
	_, err = uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "lecture01", run.Lecture)
	assert.Equal(t, fixed, run.CreatedAt)
	require.Len(t, run.Segments, 2)
	assert.Equal(t, 1, run.Segments[0].BookReferences[0].Page)
	assert.Equal(t, 2, run.Segments[1].BookReferences[0].Page)
	assert.Empty(t, run.Segments[1].ContextSegments)
	assert.Equal(t, 2, run.ReferenceCount())

	assert.Equal(t, "/data/lecture01_embeddings.npy", source.last.EmbeddingsPath)
	assert.Equal(t, "/data/lecture01.json", source.last.TextPath)
	assert.Equal(t, 0, source.last.KeyBase)
	assert.True(t, source.last.CleanTranscripts)

	stored, err := svc.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Segments, stored.Segments)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(context.Background(), run.ID))
	_, err = svc.Get(context.Background(), run.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunService_NotPersistedUnlessAsked(t *testing.T) {
	corpora, source := runFixture(t)
	runs := memory.NewRunStore()
	svc := NewRunService(corpora, source, runs, twoIntervalSegments(), nil)

	run, err := svc.Run(context.Background(), driving.RunRequest{
		Lecture:        "Mechanics 1",
		CorpusBase:     "books/physics",
		EmbeddingsPath: "fused.npy",
	})

	require.NoError(t, err)
	assert.Equal(t, "Mechanics 1", run.Lecture)
	list, err := runs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRunService_SettingsOverride(t *testing.T) {
	corpora, source := runFixture(t)
	svc := NewRunService(corpora, source, nil, twoIntervalSegments(), nil)

	override := twoIntervalSegments()
	override.SegmentMinutes = 2
	override.TranscriptKeyBase = 1

	run, err := svc.Run(context.Background(), driving.RunRequest{
		CorpusBase:     "books/physics",
		EmbeddingsPath: "f.npy",
		Settings:       &override,
	})

	require.NoError(t, err)
	assert.Len(t, run.Segments, 1)
	assert.Equal(t, 4, run.Segments[0].NumEmbeddings)
	assert.Equal(t, override, run.Settings)
	assert.Equal(t, 1, source.last.KeyBase)
}

func TestRunService_WithoutRunStore(t *testing.T) {
	corpora, source := runFixture(t)
	svc := NewRunService(corpora, source, nil, twoIntervalSegments(), nil)
	ctx := context.Background()

	run, err := svc.Run(ctx, driving.RunRequest{CorpusBase: "books/physics", EmbeddingsPath: "f.npy"})
	require.NoError(t, err)
	assert.Len(t, run.Segments, 2)

	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, domain.ErrRunStorageDisabled)
	_, err = svc.Get(ctx, run.ID)
	assert.ErrorIs(t, err, domain.ErrRunStorageDisabled)
	assert.ErrorIs(t, svc.Delete(ctx, run.ID), domain.ErrRunStorageDisabled)
}

func TestRunService_SaveWithoutRunStore(t *testing.T) {
	corpora, source := runFixture(t)
	svc := NewRunService(corpora, source, nil, twoIntervalSegments(), nil)

	run, err := svc.Run(context.Background(), driving.RunRequest{
		CorpusBase:     "books/physics",
		EmbeddingsPath: "f.npy",
		Persist:        true,
	})

	assert.ErrorIs(t, err, domain.ErrRunStorageDisabled)
	assert.Nil(t, run)
	// Rejected before any input is read.
	assert.Empty(t, source.last.EmbeddingsPath)
}

func TestRunService_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*fakeIntervalSource, *domain.MatcherSettings)
		req     driving.RunRequest
		wantErr error
	}{
		{
			name:    "missing corpus path",
			req:     driving.RunRequest{EmbeddingsPath: "f.npy"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing embeddings path",
			req:     driving.RunRequest{CorpusBase: "books/physics"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown corpus",
			req:     driving.RunRequest{CorpusBase: "books/none", EmbeddingsPath: "f.npy"},
			wantErr: domain.ErrCorpusNotFound,
		},
		{
			name: "transcript keys out of range",
			mutate: func(src *fakeIntervalSource, _ *domain.MatcherSettings) {
				src.err = domain.ErrTranscriptKeyRange
			},
			req:     driving.RunRequest{CorpusBase: "books/physics", EmbeddingsPath: "f.npy"},
			wantErr: domain.ErrTranscriptKeyRange,
		},
		{
			name: "no intervals",
			mutate: func(src *fakeIntervalSource, _ *domain.MatcherSettings) {
				src.intervals = nil
			},
			req:     driving.RunRequest{CorpusBase: "books/physics", EmbeddingsPath: "f.npy"},
			wantErr: domain.ErrNoSegmentsFound,
		},
		{
			name: "configured dimensions differ",
			mutate: func(_ *fakeIntervalSource, s *domain.MatcherSettings) {
				s.Dimensions = 384
			},
			req:     driving.RunRequest{CorpusBase: "books/physics", EmbeddingsPath: "f.npy"},
			wantErr: domain.ErrDimensionMismatch,
		},
		{
			name: "invalid settings",
			mutate: func(_ *fakeIntervalSource, s *domain.MatcherSettings) {
				s.TopK = -1
			},
			req:     driving.RunRequest{CorpusBase: "books/physics", EmbeddingsPath: "f.npy"},
			wantErr: domain.ErrInvalidSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpora, source := runFixture(t)
			settings := twoIntervalSegments()
			if tt.mutate != nil {
				tt.mutate(source, &settings)
			}
			svc := NewRunService(corpora, source, memory.NewRunStore(), settings, nil)

			_, err := svc.Run(ctx, tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
