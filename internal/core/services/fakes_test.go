package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
)

// fakeCorpusStore keeps saved corpora in memory and normalises on load,
// like the file-backed store.
type fakeCorpusStore struct {
	corpora map[string][]domain.BookChunk
	saveErr error
}

func newFakeCorpusStore() *fakeCorpusStore {
	return &fakeCorpusStore{corpora: make(map[string][]domain.BookChunk)}
}

func (f *fakeCorpusStore) Load(_ context.Context, base string) (*domain.Corpus, error) {
	chunks, ok := f.corpora[base]
	if !ok {
		return nil, domain.ErrCorpusNotFound
	}
	c := &domain.Corpus{Name: base, Chunks: append([]domain.BookChunk(nil), chunks...)}
	if len(chunks) > 0 {
		c.Dimensions = len(chunks[0].Embedding)
	}
	c.NormalizeEmbeddings()
	return c, nil
}

func (f *fakeCorpusStore) Save(_ context.Context, base string, chunks []domain.BookChunk) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.corpora[base] = append([]domain.BookChunk(nil), chunks...)
	return nil
}

// fakeEmbedder maps texts to axis vectors by keyword.
type fakeEmbedder struct {
	batches []int
	err     error
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) vector(text string) []float32 {
	text = strings.ToLower(text)
	switch {
	case strings.Contains(text, "force"):
		return []float32{1, 0, 0}
	case strings.Contains(text, "energy"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batches = append(f.batches, len(texts))
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vector(t)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }
func (f *fakeEmbedder) ModelName() string { return "fake" }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error { return nil }

// fakeIntervalSource returns fixed intervals and records the request.
type fakeIntervalSource struct {
	intervals []domain.Interval
	err       error
	last      driven.IntervalRequest
}

func (f *fakeIntervalSource) LoadIntervals(_ context.Context, req driven.IntervalRequest) ([]domain.Interval, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.intervals, nil
}
