package domain

import "time"

// MatchRun is one completed alignment of a lecture against a corpus.
type MatchRun struct {
	// ID is the unique identifier for the run.
	ID string `json:"id"`

	// Lecture is a human-readable lecture name.
	Lecture string `json:"lecture"`

	// Corpus is the corpus base path matched against.
	Corpus string `json:"corpus"`

	// Settings is the matcher configuration the run used.
	Settings MatcherSettings `json:"settings"`

	// CreatedAt is when the run completed.
	CreatedAt time.Time `json:"created_at"`

	// NumSegments is the number of segments, kept when Segments is omitted.
	NumSegments int `json:"num_segments"`

	// Segments are the emitted records in segment order.
	Segments []LectureSegment `json:"segments,omitempty"`
}

// ReferenceCount returns the total number of book references across segments.
func (r *MatchRun) ReferenceCount() int {
	n := 0
	for i := range r.Segments {
		n += len(r.Segments[i].BookReferences)
	}
	return n
}
