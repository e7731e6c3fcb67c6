package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/scribe/internal/chunker"
	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
	"github.com/custodia-labs/scribe/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// embedBatchSize is the number of chunk texts sent per embedding request.
const embedBatchSize = 32

// formulaMarkers are characters whose presence makes a line formula-like.
const formulaMarkers = "=+-×÷∑∫√^→<>"

// minFormulaLength is the minimum trimmed length of a formula line.
const minFormulaLength = 5

// CorpusService builds, inspects and queries book corpora.
type CorpusService struct {
	store            driven.CorpusStore
	embeddingService driven.EmbeddingService
	splitter         *chunker.Splitter
	settings         domain.MatcherSettings
}

// NewCorpusService creates a new corpus service.
// The embeddingService parameter is optional (can be nil); Build and Query
// then fail with domain.ErrEmbeddingUnavailable.
func NewCorpusService(
	store driven.CorpusStore,
	embeddingService driven.EmbeddingService,
	splitter *chunker.Splitter,
	settings domain.MatcherSettings,
) *CorpusService {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &CorpusService{
		store:            store,
		embeddingService: embeddingService,
		splitter:         splitter,
		settings:         settings,
	}
}

// Build chunks every page, embeds the chunks and saves the corpus at base.
func (s *CorpusService) Build(
	ctx context.Context, base string, books []driving.BookPages,
) (*driving.BuildResult, error) {
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("%w: no books to ingest", domain.ErrInvalidInput)
	}

	logger.Section("Corpus Build")
	logger.Debug("Base: %s, books: %d, chunk size: %d", base, len(books), s.splitter.ChunkSize())

	var chunks []domain.BookChunk
	for _, book := range books {
		name := strings.TrimSpace(book.BookName)
		if name == "" {
			return nil, fmt.Errorf("%w: book name is required", domain.ErrInvalidInput)
		}
		before := len(chunks)
		for i, text := range book.Pages {
			page := i + 1
			formulas := ExtractFormulas(text)
			for idx, piece := range s.splitter.Split(text) {
				chunks = append(chunks, domain.BookChunk{
					BookName: name,
					Page:     page,
					ChunkID:  domain.ChunkID(page, idx),
					Text:     piece,
					Formulas: formulas,
				})
			}
		}
		logger.Debug("Book %q: %d pages, %d chunks", name, len(book.Pages), len(chunks)-before)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: books contain no text", domain.ErrInvalidInput)
	}

	dims, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, base, chunks); err != nil {
		return nil, fmt.Errorf("save corpus: %w", err)
	}
	logger.Info("Saved %d chunks (%d dimensions) to %s", len(chunks), dims, base)

	return &driving.BuildResult{
		Base:       base,
		Books:      len(books),
		Chunks:     len(chunks),
		Dimensions: dims,
	}, nil
}

// embedChunks fills in chunk embeddings in batches and returns their size.
func (s *CorpusService) embedChunks(ctx context.Context, chunks []domain.BookChunk) (int, error) {
	dims := s.settings.Dimensions
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].Text)
		}

		logger.Debug("Embedding chunks %d-%d of %d", start+1, end, len(chunks))
		vectors, err := s.embeddingService.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(texts) {
			return 0, fmt.Errorf("embed chunks %d-%d: got %d embeddings for %d texts",
				start, end, len(vectors), len(texts))
		}

		for i, v := range vectors {
			if dims == 0 {
				dims = len(v)
			}
			if len(v) != dims {
				return 0, &domain.DimensionError{
					Expected: dims,
					Got:      len(v),
					Context:  "chunk " + chunks[start+i].ChunkID,
				}
			}
			chunks[start+i].Embedding = v
		}
	}
	return dims, nil
}

// Inspect loads the corpus at base and summarises it.
func (s *CorpusService) Inspect(ctx context.Context, base string) (*domain.CorpusSummary, error) {
	corpus, err := s.store.Load(ctx, base)
	if err != nil {
		return nil, err
	}
	summary := corpus.Summary()
	return &summary, nil
}

// Query embeds text and ranks it against the corpus at base as a batch of one.
// topK of zero uses the configured default.
func (s *CorpusService) Query(
	ctx context.Context, base, text string, topK int,
) ([]domain.BookReference, error) {
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = s.settings.TopK
	}

	corpus, err := s.store.Load(ctx, base)
	if err != nil {
		return nil, err
	}

	logger.Section("Corpus Query")
	logger.Debug("Query: %q, top-k: %d, threshold: %.2f", text, topK, s.settings.SimilarityThreshold)

	vec, err := s.embeddingService.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	refs, err := NewRanker(s.settings.SimilarityThreshold, topK).Rank([][]float32{vec}, corpus)
	if err != nil {
		return nil, err
	}
	logger.Debug("Found %d references", len(refs))
	return refs, nil
}

// ExtractFormulas returns the formula-like lines of a page: lines containing
// an operator or arrow, longer than a few characters, that are not figure captions.
func ExtractFormulas(page string) []string {
	var formulas []string
	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) <= minFormulaLength {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "figure") {
			continue
		}
		if strings.ContainsAny(line, formulaMarkers) {
			formulas = append(formulas, line)
		}
	}
	return formulas
}
