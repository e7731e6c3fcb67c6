package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

func corpusSettings() domain.MatcherSettings {
	s := domain.DefaultMatcherSettings()
	s.Dimensions = 0
	return s
}

func physicsBook() []driving.BookPages {
	return []driving.BookPages{{
		BookName: "Physics",
		Pages: []string{
			"Force equals mass times acceleration.\nF = m × a holds in inertial frames",
			"Energy is conserved in closed systems.",
			"Waves carry momentum.",
		},
	}}
}

func TestCorpusService_Build(t *testing.T) {
	store := newFakeCorpusStore()
	svc := NewCorpusService(store, &fakeEmbedder{}, nil, corpusSettings())

	result, err := svc.Build(context.Background(), "books/physics", physicsBook())

	require.NoError(t, err)
	assert.Equal(t, &driving.BuildResult{Base: "books/physics", Books: 1, Chunks: 3, Dimensions: 3}, result)

	chunks := store.corpora["books/physics"]
	require.Len(t, chunks, 3)
	assert.Equal(t, "1_0", chunks[0].ChunkID)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, []string{"F = m × a holds in inertial frames"}, chunks[0].Formulas)
	assert.Equal(t, []float32{0, 1, 0}, chunks[1].Embedding)
	assert.Equal(t, "3_0", chunks[2].ChunkID)
}

func TestCorpusService_BuildEmbedsInBatches(t *testing.T) {
	pages := make([]string, 70)
	for i := range pages {
		pages[i] = fmt.Sprintf("Page %d text.", i+1)
	}
	embedder := &fakeEmbedder{}
	svc := NewCorpusService(newFakeCorpusStore(), embedder, nil, corpusSettings())

	result, err := svc.Build(context.Background(), "b", []driving.BookPages{{BookName: "Notes", Pages: pages}})

	require.NoError(t, err)
	assert.Equal(t, 70, result.Chunks)
	assert.Equal(t, []int{32, 32, 6}, embedder.batches)
}

func TestCorpusService_BuildErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no embedder", func(t *testing.T) {
		svc := NewCorpusService(newFakeCorpusStore(), nil, nil, corpusSettings())
		_, err := svc.Build(ctx, "b", physicsBook())
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("no books", func(t *testing.T) {
		svc := NewCorpusService(newFakeCorpusStore(), &fakeEmbedder{}, nil, corpusSettings())
		_, err := svc.Build(ctx, "b", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing book name", func(t *testing.T) {
		svc := NewCorpusService(newFakeCorpusStore(), &fakeEmbedder{}, nil, corpusSettings())
		_, err := svc.Build(ctx, "b", []driving.BookPages{{BookName: " ", Pages: []string{"text"}}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("blank pages", func(t *testing.T) {
		svc := NewCorpusService(newFakeCorpusStore(), &fakeEmbedder{}, nil, corpusSettings())
		_, err := svc.Build(ctx, "b", []driving.BookPages{{BookName: "Empty", Pages: []string{"", "  "}}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		svc := NewCorpusService(newFakeCorpusStore(), &fakeEmbedder{}, nil, domain.DefaultMatcherSettings())
		_, err := svc.Build(ctx, "b", physicsBook())
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("embedding failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		svc := NewCorpusService(newFakeCorpusStore(), &fakeEmbedder{err: boom}, nil, corpusSettings())
		_, err := svc.Build(ctx, "b", physicsBook())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("save failure", func(t *testing.T) {
		store := newFakeCorpusStore()
		store.saveErr = errors.New("disk full")
		svc := NewCorpusService(store, &fakeEmbedder{}, nil, corpusSettings())
		_, err := svc.Build(ctx, "b", physicsBook())
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestCorpusService_InspectAndQuery(t *testing.T) {
	ctx := context.Background()
	svc := NewCorpusService(newFakeCorpusStore(), &fakeEmbedder{}, nil, corpusSettings())
	_, err := svc.Build(ctx, "books/physics", physicsBook())
	require.NoError(t, err)

	summary, err := svc.Inspect(ctx, "books/physics")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Chunks)
	assert.Equal(t, 3, summary.Pages)
	assert.Equal(t, []string{"Physics"}, summary.Books)

	refs, err := svc.Query(ctx, "books/physics", "What is a force?", 0)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 1, refs[0].Page)
	assert.InDelta(t, 1.0, refs[0].Similarity, 1e-6)
}

func TestCorpusService_QueryErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewCorpusService(newFakeCorpusStore(), nil, nil, corpusSettings())
	_, err := svc.Query(ctx, "b", "force", 5)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	svc = NewCorpusService(newFakeCorpusStore(), &fakeEmbedder{}, nil, corpusSettings())
	_, err = svc.Query(ctx, "b", "   ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Query(ctx, "missing", "force", 5)
	assert.ErrorIs(t, err, domain.ErrCorpusNotFound)
}

func TestExtractFormulas(t *testing.T) {
	page := "Chapter 2\n" +
		"  E = mc^2  \n" +
		"Figure 2.1: a → b\n" +
		"x=1\n" +
		"The integral ∫ f(x) dx is area\n" +
		"plain prose line without operators"

	assert.Equal(t, []string{"E = mc^2", "The integral ∫ f(x) dx is area"}, ExtractFormulas(page))
	assert.Nil(t, ExtractFormulas(""))
}
