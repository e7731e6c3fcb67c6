package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/views/runs"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/views/segment"
	"github.com/custodia-labs/scribe/internal/adapters/driving/tui/views/segments"
)

// App is the run browser following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	statusBar    *status.Bar
	runsView     *runs.View
	segmentsView *segments.View
	segmentView  *segment.View

	currentView messages.ViewType
	// helpReturn is the view the help screen goes back to.
	helpReturn messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		statusBar:    status.NewBar(s, km),
		runsView:     runs.NewView(s, ports.Runs),
		segmentsView: segments.NewView(s),
		segmentView:  segment.NewView(s),
		currentView:  messages.ViewRuns,
	}, nil
}

// WithContext sets the context for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.runsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.statusBar.SetState(status.StateLoading)
	return tea.Batch(
		tea.SetWindowTitle("scribe - saved runs"),
		a.runsView.Init(),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.RunsLoaded:
		a.runsView, cmd = a.runsView.Update(msg)
		a.setRunsStatus(msg.Err)
		return a, cmd

	case messages.RunDeleted:
		a.runsView, cmd = a.runsView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.statusBar.SetState(status.StateLoading)
		}
		return a, cmd

	case messages.RunSelected:
		a.statusBar.SetState(status.StateLoading)
		return a, a.loadRun(msg.ID)

	case messages.RunLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.err = nil
		a.segmentsView.SetRun(msg.Run)
		a.currentView = messages.ViewSegments
		a.statusBar.SetCount(len(msg.Run.Segments), "segments")
		return a, nil

	case messages.SegmentSelected:
		a.segmentView.SetSegment(msg.Segment)
		a.currentView = messages.ViewSegment
		a.statusBar.Clear()
		a.statusBar.SetMessage(fmt.Sprintf("%d book references", len(msg.Segment.BookReferences)))
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewRuns:
			a.setRunsStatus(a.runsView.Err())
		case messages.ViewSegments:
			if run := a.segmentsView.Run(); run != nil {
				a.statusBar.SetCount(len(run.Segments), "segments")
			}
		case messages.ViewSegment, messages.ViewHelp:
		}
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	keyStr := msg.String()

	if keymap.Matches(keyStr, a.keymap.Quit) {
		return a, tea.Quit
	}
	if a.currentView == messages.ViewHelp {
		if keymap.Matches(keyStr, a.keymap.Back) || keymap.Matches(keyStr, a.keymap.Help) {
			a.currentView = a.helpReturn
		}
		return a, nil
	}
	if keymap.Matches(keyStr, a.keymap.Help) {
		a.helpReturn = a.currentView
		a.currentView = messages.ViewHelp
		return a, nil
	}

	switch a.currentView {
	case messages.ViewRuns:
		a.runsView, cmd = a.runsView.Update(msg)
	case messages.ViewSegments:
		a.segmentsView, cmd = a.segmentsView.Update(msg)
	case messages.ViewSegment:
		a.segmentView, cmd = a.segmentView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

// loadRun fetches the full run including segments.
func (a *App) loadRun(id string) tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Runs
	return func() tea.Msg {
		run, err := svc.Get(ctx, id)
		return messages.RunLoaded{Run: run, Err: err}
	}
}

func (a *App) setRunsStatus(err error) {
	if err != nil {
		a.setError(err)
		return
	}
	a.err = nil
	a.statusBar.SetMessage("")
	a.statusBar.SetCount(len(a.runsView.Runs()), "runs")
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewRuns:
		body = a.runsView.View()
	case messages.ViewSegments:
		body = a.segmentsView.View()
	case messages.ViewSegment:
		body = a.segmentView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	}
	return body + "\n" + a.statusBar.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusBar.SetWidth(width)
	// One line for the status bar.
	a.runsView.SetDimensions(width, height-1)
	a.segmentsView.SetDimensions(width, height-1)
	a.segmentView.SetDimensions(width, height-1)
}
