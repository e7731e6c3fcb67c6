package npy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/logger"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// File suffixes of a persisted corpus.
const (
	embeddingsSuffix = "_embeddings.npy"
	metadataSuffix   = "_metadata.json"
)

// EmbeddingsPath returns the embedding array path of the corpus at base.
func EmbeddingsPath(base string) string {
	return base + embeddingsSuffix
}

// MetadataPath returns the metadata path of the corpus at base.
func MetadataPath(base string) string {
	return base + metadataSuffix
}

// chunkRecord is one metadata entry. Pointers distinguish absent fields.
type chunkRecord struct {
	BookName *string           `json:"book_name"`
	Page     *int              `json:"page"`
	ChunkID  string            `json:"chunk_id,omitempty"`
	Text     *string           `json:"text"`
	Formulas []string          `json:"formulas,omitempty"`
	Images   []domain.ImageRef `json:"images,omitempty"`
}

// CorpusStore persists book corpora as .npy + .json file pairs.
type CorpusStore struct {
	dims int
}

// NewCorpusStore creates a corpus store expecting dims-sized embeddings.
// A dims of 0 accepts whatever size the array has.
func NewCorpusStore(dims int) *CorpusStore {
	return &CorpusStore{dims: dims}
}

// Load reads the corpus at base and L2-normalises every embedding.
func (s *CorpusStore) Load(ctx context.Context, base string) (*domain.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	embPath, metaPath := EmbeddingsPath(base), MetadataPath(base)
	logger.Debug("Loading corpus: %s, %s", embPath, metaPath)

	for _, p := range []string{embPath, metaPath} {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", domain.ErrCorpusNotFound, p)
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
	}

	rows, dims, err := ReadMatrix(embPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorpusCorrupt, err)
	}
	if s.dims != 0 && dims != s.dims {
		return nil, &domain.DimensionError{Expected: s.dims, Got: dims, Context: "corpus " + embPath}
	}

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var records []chunkRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorpusCorrupt, metaPath, err)
	}
	if len(records) != len(rows) {
		return nil, fmt.Errorf("%w: %d embeddings but %d metadata entries", domain.ErrCorpusCorrupt, len(rows), len(records))
	}

	chunks, err := toChunks(records, rows)
	if err != nil {
		return nil, err
	}

	corpus := &domain.Corpus{Name: base, Dimensions: dims, Chunks: chunks}
	if err := corpus.Validate(); err != nil {
		return nil, err
	}
	corpus.NormalizeEmbeddings()

	logger.Debug("Loaded %d chunks, %d dimensions", len(chunks), dims)
	return corpus, nil
}

// toChunks validates required fields and derives missing chunk IDs as
// "<page>_<ordinal within page>".
func toChunks(records []chunkRecord, rows [][]float32) ([]domain.BookChunk, error) {
	ordinals := make(map[string]int)
	chunks := make([]domain.BookChunk, len(records))
	for i, rec := range records {
		switch {
		case rec.BookName == nil || *rec.BookName == "":
			return nil, fmt.Errorf("%w: entry %d: missing book_name", domain.ErrCorpusCorrupt, i)
		case rec.Page == nil:
			return nil, fmt.Errorf("%w: entry %d: missing page", domain.ErrCorpusCorrupt, i)
		case rec.Text == nil:
			return nil, fmt.Errorf("%w: entry %d: missing text", domain.ErrCorpusCorrupt, i)
		}

		id := rec.ChunkID
		pageKey := fmt.Sprintf("%s/%d", *rec.BookName, *rec.Page)
		if id == "" {
			id = domain.ChunkID(*rec.Page, ordinals[pageKey])
		}
		ordinals[pageKey]++

		chunks[i] = domain.BookChunk{
			BookName:  *rec.BookName,
			Page:      *rec.Page,
			ChunkID:   id,
			Text:      *rec.Text,
			Formulas:  rec.Formulas,
			Images:    rec.Images,
			Embedding: rows[i],
		}
	}
	return chunks, nil
}

// Save writes chunks and their raw embeddings to base, replacing existing files.
func (s *CorpusStore) Save(ctx context.Context, base string, chunks []domain.BookChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to save", domain.ErrInvalidInput)
	}

	rows := make([][]float32, len(chunks))
	records := make([]chunkRecord, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		if s.dims != 0 && len(c.Embedding) != s.dims {
			return &domain.DimensionError{Expected: s.dims, Got: len(c.Embedding), Context: "chunk " + c.ChunkID}
		}
		rows[i] = c.Embedding
		records[i] = chunkRecord{
			BookName: &c.BookName,
			Page:     &c.Page,
			ChunkID:  c.ChunkID,
			Text:     &c.Text,
			Formulas: c.Formulas,
			Images:   c.Images,
		}
	}

	if err := WriteMatrix(EmbeddingsPath(base), rows); err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	metaPath := MetadataPath(base)
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	logger.Debug("Saved %d chunks to %s", len(chunks), base)
	return nil
}
