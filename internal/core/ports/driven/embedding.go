package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, book ingestion and free-text
// corpus queries are disabled. Matching itself works on precomputed vectors.
//
// A single instance is constructed by the caller and injected; it is never
// re-initialised mid-pipeline.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// This must match the dimensions of the corpus being queried.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
