package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// Ranker scores a segment's interval embeddings against a book corpus and
// selects the best chunks above a threshold.
//
// Corpus embeddings must already be L2-normalised (CorpusStore.Load does this).
// Query vectors are normalised by the ranker.
type Ranker struct {
	threshold float64
	topK      int
}

// NewRanker creates a ranker returning at most topK matches scoring at least threshold.
func NewRanker(threshold float64, topK int) *Ranker {
	return &Ranker{threshold: threshold, topK: topK}
}

// Rank returns up to K references in descending score order, each scoring at
// least the threshold. An empty batch yields no references.
func (r *Ranker) Rank(batch [][]float32, corpus *domain.Corpus) ([]domain.BookReference, error) {
	scores, err := r.Scores(batch, corpus)
	if err != nil {
		return nil, err
	}
	return r.Select(scores, corpus), nil
}

// Scores returns, for every corpus chunk, the cosine similarity to each query
// vector averaged across the batch. The result is nil for an empty batch.
func (r *Ranker) Scores(batch [][]float32, corpus *domain.Corpus) ([]float64, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	scores := make([]float64, corpus.Len())
	for i, q := range batch {
		if len(q) != corpus.Dimensions {
			return nil, &domain.DimensionError{
				Expected: corpus.Dimensions,
				Got:      len(q),
				Context:  fmt.Sprintf("query vector %d", i),
			}
		}
		qn := domain.Normalize(q)
		for j := range corpus.Chunks {
			scores[j] += dot(qn, corpus.Chunks[j].Embedding)
		}
	}

	n := float64(len(batch))
	for j := range scores {
		scores[j] = domain.ClampSimilarity(scores[j] / n)
	}
	return scores, nil
}

// Select orders chunks by score, keeps the top K and drops those below the threshold.
// Equal scores keep corpus order.
func (r *Ranker) Select(scores []float64, corpus *domain.Corpus) []domain.BookReference {
	refs := []domain.BookReference{}
	if len(scores) == 0 {
		return refs
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	k := min(r.topK, len(order))
	for _, idx := range order[:k] {
		if scores[idx] < r.threshold {
			// Descending order: everything after scores lower still.
			break
		}
		refs = append(refs, domain.NewBookReference(scores[idx], &corpus.Chunks[idx]))
	}
	return refs
}

// dot assumes equal lengths; callers check dimensions first.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
