// Package sqlite provides a SQLite-based implementation of driven.RunStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
//   - runs: one row per match run, settings stored as JSON
//   - run_segments: one row per lecture segment
//   - segment_references: ranked book references of each segment
//
// Deleting a run cascades to its segments and references.
//
// # Data Location
//
// By default, the database is stored at ~/.scribe/data/runs.db
package sqlite
