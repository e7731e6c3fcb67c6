// Package segment provides the single segment view for the TUI.
package segment

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scribe/internal/core/domain"
)

// View shows one segment: its transcript, context links and book references.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	segment      *domain.LectureSegment
	scrollOffset int
	width        int
	height       int
}

// NewView creates a new segment view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
	}
}

// SetSegment shows seg from the top.
func (v *View) SetSegment(seg domain.LectureSegment) {
	v.segment = &seg
	v.scrollOffset = 0
}

// Update handles messages for the segment view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		keyStr := msg.String()
		switch {
		case keymap.Matches(keyStr, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSegments} }
		case keymap.Matches(keyStr, v.keymap.Up):
			if v.scrollOffset > 0 {
				v.scrollOffset--
			}
		case keymap.Matches(keyStr, v.keymap.Down):
			if v.scrollOffset < v.maxScrollOffset() {
				v.scrollOffset++
			}
		}
	}
	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

func (v *View) textWidth() int {
	return max(min(v.width-4, 100), 20)
}

// buildContent renders the segment into display lines.
func (v *View) buildContent() []string {
	if v.segment == nil {
		return nil
	}
	seg := v.segment
	wrap := lipgloss.NewStyle().Width(v.textWidth())

	lines := []string{
		v.field("Minutes", fmt.Sprintf("%.1f - %.1f", seg.TimestampStart, seg.TimestampEnd)),
		v.field("Intervals", strconv.Itoa(seg.NumEmbeddings)),
		v.field("Continues", formatContext(seg.ContextSegments)),
		"",
		v.styles.Subtitle.Render("Transcript"),
	}
	lines = append(lines, v.paragraph(wrap, seg.LectureAudioText)...)
	if seg.LectureVideoText != "" {
		lines = append(lines, "", v.styles.Subtitle.Render("On screen"))
		lines = append(lines, v.paragraph(wrap, seg.LectureVideoText)...)
	}

	lines = append(lines, "", v.styles.Subtitle.Render(fmt.Sprintf("Book references (%d)", len(seg.BookReferences))))
	if len(seg.BookReferences) == 0 {
		lines = append(lines, v.styles.Muted.Render("  none above the similarity threshold"))
	}
	for i, ref := range seg.BookReferences {
		header := fmt.Sprintf("%d. %s, page %d", i+1, ref.BookName, ref.Page)
		lines = append(lines, v.styles.Normal.Render(header)+"  "+
			v.styles.Similarity(ref.Similarity).Render(fmt.Sprintf("%.4f", ref.Similarity)))
		lines = append(lines, v.paragraph(wrap, ref.Text)...)
	}
	return lines
}

func (v *View) field(label, value string) string {
	return v.styles.Subtitle.Render(fmt.Sprintf("%-10s", label+":")) + " " + v.styles.Normal.Render(value)
}

func (v *View) paragraph(wrap lipgloss.Style, text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return []string{v.styles.Muted.Render("  (empty)")}
	}
	return strings.Split(wrap.Render(text), "\n")
}

func formatContext(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// View renders the segment view.
func (v *View) View() string {
	var b strings.Builder

	if v.segment == nil {
		b.WriteString(v.styles.Title.Render("Segment"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("No segment selected."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Segment %d", v.segment.SegmentID)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 1)))
	b.WriteString("\n\n")

	lines := v.buildContent()
	visible := v.visibleLines()
	for i := v.scrollOffset; i < len(lines) && i < v.scrollOffset+visible; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	if len(lines) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]",
			v.scrollOffset+1, min(v.scrollOffset+visible, len(lines)), len(lines))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderHelp() string {
	return v.styles.Help.Render("[↑/↓] scroll  [esc] back  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Segment returns the segment being shown.
func (v *View) Segment() *domain.LectureSegment {
	return v.segment
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
