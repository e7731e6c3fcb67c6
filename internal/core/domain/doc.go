// Package domain defines the core business entities for Scribe.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - BookChunk / Corpus: pre-embedded textbook passages available for retrieval
//   - Interval: a fixed-duration slice of the lecture with one embedding
//   - SegmentWindow: consecutive intervals grouped into a coarse segment
//   - LectureSegment: the enriched record emitted per segment
//   - MatchRun: a persisted alignment of one lecture against one corpus
//
// It also holds the vector math shared by every matcher (Normalize, Cosine, Mean).
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
