package domain

import "fmt"

// BookChunk is one contiguous slice of source-book text with its embedding.
// Chunks are created once at ingestion time and never mutated afterwards.
type BookChunk struct {
	// BookName identifies the source book.
	BookName string

	// Page is the 1-based page the text came from.
	Page int

	// ChunkID is unique within a book: "<page>_<index within page>".
	ChunkID string

	// Text is the raw chunk text.
	Text string

	// Formulas are formula-like lines found on the chunk's page.
	Formulas []string

	// Images are references to figures extracted from the chunk's page.
	Images []ImageRef

	// Embedding is the chunk vector. Normalised once the corpus is loaded for matching.
	Embedding []float32
}

// ImageRef points at an image extracted from a book page.
type ImageRef struct {
	FilePath string `json:"file_path"`
	Page     int    `json:"page"`
	ImageID  string `json:"image_id"`
}

// ChunkID builds the identifier of the index-th chunk on page.
func ChunkID(page, index int) string {
	return fmt.Sprintf("%d_%d", page, index)
}

// Corpus is the full set of book chunks available for retrieval.
// It is loaded wholesale and never mutated during matching.
type Corpus struct {
	// Name is the base path the corpus was loaded from.
	Name string

	// Dimensions is the embedding size shared by every chunk.
	Dimensions int

	// Chunks are the book chunks in insertion order.
	Chunks []BookChunk
}

// Len returns the number of chunks.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Chunks)
}

// Books returns the distinct book names in first-seen order.
func (c *Corpus) Books() []string {
	seen := make(map[string]bool)
	var books []string
	for i := range c.Chunks {
		name := c.Chunks[i].BookName
		if !seen[name] {
			seen[name] = true
			books = append(books, name)
		}
	}
	return books
}

// Validate checks every chunk carries the required attributes and a
// consistent embedding size.
func (c *Corpus) Validate() error {
	for i := range c.Chunks {
		ch := &c.Chunks[i]
		if ch.BookName == "" {
			return fmt.Errorf("%w: chunk %d: missing book name", ErrCorpusCorrupt, i)
		}
		if ch.Page < 1 {
			return fmt.Errorf("%w: chunk %d: page must be positive, got %d", ErrCorpusCorrupt, i, ch.Page)
		}
		if len(ch.Embedding) != c.Dimensions {
			return &DimensionError{
				Expected: c.Dimensions,
				Got:      len(ch.Embedding),
				Context:  fmt.Sprintf("corpus chunk %d", i),
			}
		}
	}
	return nil
}

// CorpusSummary describes a corpus for display.
type CorpusSummary struct {
	Name       string   `json:"name"`
	Chunks     int      `json:"chunks"`
	Dimensions int      `json:"dimensions"`
	Books      []string `json:"books"`
	Pages      int      `json:"pages"`
}

// Summary returns a CorpusSummary for c.
func (c *Corpus) Summary() CorpusSummary {
	pages := make(map[string]bool)
	for i := range c.Chunks {
		pages[fmt.Sprintf("%s/%d", c.Chunks[i].BookName, c.Chunks[i].Page)] = true
	}
	return CorpusSummary{
		Name:       c.Name,
		Chunks:     len(c.Chunks),
		Dimensions: c.Dimensions,
		Books:      c.Books(),
		Pages:      len(pages),
	}
}

// NormalizeEmbeddings L2-normalises every chunk embedding in place.
// Called once when a corpus is loaded for matching.
func (c *Corpus) NormalizeEmbeddings() {
	for i := range c.Chunks {
		c.Chunks[i].Embedding = Normalize(c.Chunks[i].Embedding)
	}
}
