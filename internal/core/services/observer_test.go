package services

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/logger"
)

func TestLogObserver_WritesWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	defer func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	}()

	obs := LogObserver{}
	obs.SegmentStarted(domain.SegmentWindow{ID: 0, Start: 0, End: 30}, 2)
	obs.BookMatches(0, driven.RankStats{Min: -0.1, Max: 0.8}, []domain.BookReference{
		{Similarity: 0.8, BookName: "Physics", Page: 12},
	})
	obs.ContextResolved(0, nil)
	obs.SegmentCompleted(domain.LectureSegment{SegmentID: 0, TimestampEnd: 5})
	obs.RunCompleted(2)

	out := buf.String()
	assert.Contains(t, out, "=== Segment 1/2 ===")
	assert.Contains(t, out, "min=-0.1000 max=0.8000")
	assert.Contains(t, out, "#1 0.8000 Physics p.12")
	assert.Contains(t, out, "Segment 0: no context segments")
	assert.Contains(t, out, "Matched 2 segments")
}

func TestLogObserver_SilentWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	obs := LogObserver{}
	obs.BookMatches(3, driven.RankStats{}, nil)
	obs.ContextResolved(3, []int{1, 2})

	assert.Empty(t, buf.String())
}
