package domain

// SegmentWindow is a coarse lecture segment before matching: the consecutive
// intervals it covers, their embeddings and the joined text.
type SegmentWindow struct {
	// ID is the 0-based segment index.
	ID int

	// Start is the first interval index covered (inclusive).
	Start int

	// End is one past the last interval index covered.
	End int

	// Embeddings are the interval embeddings in interval order.
	Embeddings [][]float32

	// AudioText is the joined transcript text.
	AudioText string

	// VideoText is the joined visual-description text.
	VideoText string
}

// Count returns the number of intervals in the window.
func (w SegmentWindow) Count() int {
	return w.End - w.Start
}

// BookReference is a book chunk matched to a segment with its averaged similarity.
type BookReference struct {
	Similarity float64 `json:"similarity"`
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	BookName   string  `json:"book_name"`
	ChunkID    string  `json:"chunk_id,omitempty"`
}

// NewBookReference builds a reference from a corpus chunk.
func NewBookReference(score float64, chunk *BookChunk) BookReference {
	return BookReference{
		Similarity: score,
		Text:       chunk.Text,
		Page:       chunk.Page,
		BookName:   chunk.BookName,
		ChunkID:    chunk.ChunkID,
	}
}

// LectureSegment is the enriched record emitted for each coarse segment.
type LectureSegment struct {
	SegmentID        int             `json:"segment_id"`
	TimestampStart   float64         `json:"timestamp_start"`
	TimestampEnd     float64         `json:"timestamp_end"`
	LectureAudioText string          `json:"lecture_audio_text"`
	LectureVideoText string          `json:"lecture_video_text,omitempty"`
	BookReferences   []BookReference `json:"book_references"`
	ContextSegments  []int           `json:"context_segments"`
	NumEmbeddings    int             `json:"num_embeddings_in_segment"`
}

// SegmentTimestamps returns the start and end of segment id in minutes.
// Both are derived from the nominal segment duration, so a partial final
// segment still reports a full-length end.
func SegmentTimestamps(id int, segmentSeconds int) (start, end float64) {
	start = float64(id*segmentSeconds) / 60
	end = float64((id+1)*segmentSeconds) / 60
	return start, end
}
