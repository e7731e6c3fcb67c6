// Package mcp provides an MCP (Model Context Protocol) server adapter for Scribe.
// It lets AI assistants query book corpora, match lectures and read persisted runs.
package mcp

import "errors"

var (
	// ErrMissingCorpusService is returned when the corpus service is not provided.
	ErrMissingCorpusService = errors.New("mcp: corpus service is required")

	// ErrMissingRunService is returned when the run service is not provided.
	ErrMissingRunService = errors.New("mcp: run service is required")
)
