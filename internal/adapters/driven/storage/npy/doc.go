// Package npy provides file-backed stores for embedding arrays in NumPy's
// .npy format.
//
// A book corpus is a pair of files sharing a base path:
//
//	<base>_embeddings.npy   float array, shape [chunks, D]
//	<base>_metadata.json    one object per row: book_name, page, chunk_id, text, formulas, images
//
// Lecture intervals are a [intervals, D] array plus an optional JSON object
// mapping "segment_<n>" keys to {transcript, video_text}.
package npy
