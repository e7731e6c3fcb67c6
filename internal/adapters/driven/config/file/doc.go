// Package file provides the TOML-backed configuration store.
//
// Keys are addressed in dot notation ("matcher.top_k") and written back as
// nested TOML tables, so the file on disk reads:
//
//	[matcher]
//	top_k = 5
package file
