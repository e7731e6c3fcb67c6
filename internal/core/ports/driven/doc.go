// Package driven defines the outbound ports of the core: the infrastructure
// the services depend on but do not implement.
//
//   - CorpusStore: persisted book embedding corpora
//   - IntervalSource: per-interval lecture embeddings and text
//   - RunStore: completed match runs
//   - EmbeddingService: text to vector
//   - ConfigStore: key/value application configuration
//   - MatchObserver: progress events from the segment processor
//
// Adapters live in internal/adapters/driven.
package driven
