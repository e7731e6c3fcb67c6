// Package runs provides the saved runs list view for the TUI.
package runs

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// View lists saved runs, newest first.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	runService driving.RunService
	ctx        context.Context

	runs     []domain.MatchRun
	selected int
	width    int
	height   int
	err      error
	loading  bool
}

// NewView creates a new runs view.
func NewView(s *styles.Styles, runService driving.RunService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:     s,
		keymap:     keymap.DefaultKeyMap(),
		runService: runService,
		ctx:        context.Background(),
		runs:       []domain.MatchRun{},
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the runs.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadRuns()
}

func (v *View) loadRuns() tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.runService == nil {
			return messages.RunsLoaded{Err: fmt.Errorf("run service not available")}
		}
		runs, err := v.runService.List(ctx)
		return messages.RunsLoaded{Runs: runs, Err: err}
	}
}

func (v *View) deleteRun(id string) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		if v.runService == nil {
			return messages.RunDeleted{ID: id, Err: fmt.Errorf("run service not available")}
		}
		return messages.RunDeleted{ID: id, Err: v.runService.Delete(ctx, id)}
	}
}

// Update handles messages for the runs view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RunsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.runs = msg.Runs
		v.err = nil
		if v.selected >= len(v.runs) {
			v.selected = max(len(v.runs)-1, 0)
		}
		return v, nil

	case messages.RunDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadRuns()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(keyStr, v.keymap.Down):
		if v.selected < len(v.runs)-1 {
			v.selected++
		}
	case keymap.Matches(keyStr, v.keymap.Select):
		if run := v.SelectedRun(); run != nil {
			id := run.ID
			return v, func() tea.Msg { return messages.RunSelected{ID: id} }
		}
	case keymap.Matches(keyStr, v.keymap.Delete):
		if run := v.SelectedRun(); run != nil {
			return v, v.deleteRun(run.ID)
		}
	case keymap.Matches(keyStr, v.keymap.Reload):
		v.loading = true
		return v, v.loadRuns()
	}
	return v, nil
}

// View renders the runs view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Saved Runs"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading runs..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	case len(v.runs) == 0:
		b.WriteString(v.styles.Muted.Render(`No saved runs. Use "scribe match --save" to keep one.`))
	default:
		for i := range v.runs {
			b.WriteString(v.renderRun(i, &v.runs[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] open  [d] delete  [r] reload  [q] quit"))
	return b.String()
}

func (v *View) renderRun(index int, run *domain.MatchRun) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := run.Lecture
	if name == "" {
		name = run.ID
	}
	maxNameLen := max(v.width-40, 10)
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}
	created := run.CreatedAt.Local().Format("2006-01-02 15:04")
	detail := fmt.Sprintf("%3d segments  %s", run.NumSegments, created)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, detail))
	}
	return v.styles.Normal.Render(indicator) +
		v.styles.Normal.Render(fmt.Sprintf("%-*s  ", maxNameLen, name)) +
		v.styles.Muted.Render(detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Runs returns the loaded runs.
func (v *View) Runs() []domain.MatchRun {
	return v.runs
}

// SelectedIndex returns the highlighted row.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedRun returns the highlighted run, or nil when the list is empty.
func (v *View) SelectedRun() *domain.MatchRun {
	if v.selected < 0 || v.selected >= len(v.runs) {
		return nil
	}
	return &v.runs[v.selected]
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
