// Package segments provides the segment list of one run for the TUI.
package segments

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scribe/internal/core/domain"
)

// View lists the segments of the open run.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	run          *domain.MatchRun
	selected     int
	scrollOffset int
	width        int
	height       int
	err          error
}

// NewView creates a new segments view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
	}
}

// SetRun shows run and resets the selection.
func (v *View) SetRun(run *domain.MatchRun) {
	v.run = run
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
}

// SetError shows err instead of the segment list.
func (v *View) SetError(err error) {
	v.err = err
}

// Update handles messages for the segments view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewRuns} }
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < v.count()-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(keyStr, v.keymap.Select):
		if v.selected < v.count() {
			seg := v.run.Segments[v.selected]
			return v, func() tea.Msg { return messages.SegmentSelected{Segment: seg} }
		}
	}
	return v, nil
}

func (v *View) count() int {
	if v.run == nil {
		return 0
	}
	return len(v.run.Segments)
}

// adjustScroll keeps the selection inside the visible window.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	// Title, run summary, help and padding.
	return max(v.height-8, 1)
}

// View renders the segments view.
func (v *View) View() string {
	var b strings.Builder

	if v.run == nil {
		b.WriteString(v.styles.Title.Render("Segments"))
		b.WriteString("\n\n")
		if v.err != nil {
			b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		} else {
			b.WriteString(v.styles.Muted.Render("No run selected."))
		}
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	name := v.run.Lecture
	if name == "" {
		name = v.run.ID
	}
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Segments - %s (%d)", name, v.count())))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("corpus %s  threshold %.2f  top-k %d",
		v.run.Corpus, v.run.Settings.SimilarityThreshold, v.run.Settings.TopK)))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}
	if v.count() == 0 {
		b.WriteString(v.styles.Muted.Render("This run has no segments."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	visible := v.visibleItemCount()
	for i := v.scrollOffset; i < v.count() && i < v.scrollOffset+visible; i++ {
		b.WriteString(v.renderSegment(i, &v.run.Segments[i]))
		b.WriteString("\n")
	}
	if v.count() > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1, min(v.scrollOffset+visible, v.count()), v.count())))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderSegment(index int, seg *domain.LectureSegment) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	header := fmt.Sprintf("#%-3d %5.1f-%5.1f min", seg.SegmentID, seg.TimestampStart, seg.TimestampEnd)
	top := "no references"
	if len(seg.BookReferences) > 0 {
		ref := seg.BookReferences[0]
		top = fmt.Sprintf("%s p.%d (%.2f)", ref.BookName, ref.Page, ref.Similarity)
	}
	ctx := ""
	if len(seg.ContextSegments) > 0 {
		ids := make([]string, len(seg.ContextSegments))
		for i, id := range seg.ContextSegments {
			ids[i] = strconv.Itoa(id)
		}
		ctx = "  ↩ " + strings.Join(ids, ",")
	}

	if index == v.selected {
		return v.styles.Selected.Render(indicator + header + "  " + top + ctx)
	}
	score := 0.0
	if len(seg.BookReferences) > 0 {
		score = seg.BookReferences[0].Similarity
	}
	return v.styles.Normal.Render(indicator+header+"  ") +
		v.styles.Similarity(score).Render(top) +
		v.styles.Muted.Render(ctx)
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] navigate  [enter] references  [esc] back  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Run returns the run being shown.
func (v *View) Run() *domain.MatchRun {
	return v.run
}

// SelectedIndex returns the highlighted segment.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
