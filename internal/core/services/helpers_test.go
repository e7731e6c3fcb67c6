package services

import (
	"math"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// testCorpus builds a normalised corpus with one chunk per vector.
func testCorpus(vectors ...[]float32) *domain.Corpus {
	c := &domain.Corpus{Name: "test"}
	for i, v := range vectors {
		c.Chunks = append(c.Chunks, domain.BookChunk{
			BookName:  "Physics",
			Page:      i + 1,
			ChunkID:   domain.ChunkID(i+1, 0),
			Text:      "chunk " + domain.ChunkID(i+1, 0),
			Embedding: v,
		})
	}
	if len(vectors) > 0 {
		c.Dimensions = len(vectors[0])
	}
	c.NormalizeEmbeddings()
	return c
}

// atSimilarity returns a 2-D unit vector whose cosine with (1, 0) is s.
func atSimilarity(s float64) []float32 {
	return []float32{float32(s), float32(math.Sqrt(1 - s*s))}
}

// testIntervals builds n intervals whose embedding is produced by vec.
func testIntervals(n int, vec func(i int) []float32) []domain.Interval {
	out := make([]domain.Interval, n)
	for i := range out {
		out[i] = domain.Interval{Index: i, Embedding: vec(i)}
	}
	return out
}
