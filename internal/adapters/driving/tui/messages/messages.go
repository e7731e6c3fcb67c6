// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/scribe/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewRuns lists saved runs.
	ViewRuns ViewType = iota
	// ViewSegments lists the segments of one run.
	ViewSegments
	// ViewSegment shows one segment with its book references.
	ViewSegment
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewRuns:
		return "runs"
	case ViewSegments:
		return "segments"
	case ViewSegment:
		return "segment"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// RunsLoaded carries the saved runs, newest first, without segments.
type RunsLoaded struct {
	Runs []domain.MatchRun
	Err  error
}

// RunSelected asks for the full run with the given ID.
type RunSelected struct {
	ID string
}

// RunLoaded carries a full run with its segments.
type RunLoaded struct {
	Run *domain.MatchRun
	Err error
}

// RunDeleted signals a run was deleted.
type RunDeleted struct {
	ID  string
	Err error
}

// SegmentSelected signals a segment of the open run was selected.
type SegmentSelected struct {
	Segment domain.LectureSegment
}
