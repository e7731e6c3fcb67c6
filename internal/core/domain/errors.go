package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSettings indicates a matcher or provider setting failed validation.
	ErrInvalidSettings = errors.New("invalid settings")

	// Corpus Errors.

	// ErrCorpusNotFound indicates one of the persisted corpus files is absent.
	ErrCorpusNotFound = errors.New("corpus not found")

	// ErrCorpusCorrupt indicates the corpus files are structurally inconsistent:
	// mismatched lengths, unreadable arrays or metadata entries missing required fields.
	ErrCorpusCorrupt = errors.New("corpus corrupt")

	// Matching Errors.

	// ErrNoSegmentsFound indicates zero intervals were supplied.
	// Callers decide whether this is fatal.
	ErrNoSegmentsFound = errors.New("no segments found")

	// ErrDimensionMismatch indicates a vector has an unexpected dimensionality.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrTranscriptKeyRange indicates per-interval text keys fall outside the
	// interval range implied by the configured key base.
	ErrTranscriptKeyRange = errors.New("transcript key out of range")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Book ingestion and free-text corpus queries are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Run Errors.

	// ErrRunStorageDisabled indicates runs are requested but no run store is configured.
	ErrRunStorageDisabled = errors.New("run storage disabled")
)

// DimensionError describes a vector whose length differs from the expected one.
// It matches ErrDimensionMismatch with errors.Is.
type DimensionError struct {
	Expected int
	Got      int
	Context  string
}

// Error implements error.
func (e *DimensionError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
	}
	return fmt.Sprintf("dimension mismatch (%s): expected %d, got %d", e.Context, e.Expected, e.Got)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
