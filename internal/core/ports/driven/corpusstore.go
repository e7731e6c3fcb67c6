package driven

import (
	"context"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// CorpusStore persists book corpora.
// A corpus is identified by a base path; implementations decide the file layout.
type CorpusStore interface {
	// Load reads the corpus at base and returns it with every embedding L2-normalised.
	// Returns domain.ErrCorpusNotFound if any backing file is absent and
	// domain.ErrCorpusCorrupt if the files are structurally inconsistent.
	Load(ctx context.Context, base string) (*domain.Corpus, error)

	// Save writes chunks (with raw embeddings) to base, replacing any existing corpus.
	Save(ctx context.Context, base string, chunks []domain.BookChunk) error
}
