package driving

import (
	"context"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// BookPages is the extracted text of one book, one entry per page.
type BookPages struct {
	// BookName identifies the book in every chunk it produces.
	BookName string

	// Pages holds the page texts; Pages[0] is page 1.
	Pages []string
}

// BuildResult summarises a corpus build.
type BuildResult struct {
	Base       string `json:"base"`
	Books      int    `json:"books"`
	Chunks     int    `json:"chunks"`
	Dimensions int    `json:"dimensions"`
}

// CorpusService manages book corpora.
type CorpusService interface {
	// Build chunks and embeds the books and persists them as the corpus at base.
	// Requires an embedding service.
	Build(ctx context.Context, base string, books []BookPages) (*BuildResult, error)

	// Inspect loads the corpus at base and summarises it.
	Inspect(ctx context.Context, base string) (*domain.CorpusSummary, error)

	// Query embeds text and returns the best matching chunks above the threshold.
	// Requires an embedding service.
	Query(ctx context.Context, base, text string, topK int) ([]domain.BookReference, error)
}
