package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// executeCommand runs the root command with services injected and returns
// everything written to stdout and stderr.
func executeCommand(t *testing.T, services *Services, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	SetServices(services)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		SetServices(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func newTestServices(runs *mockRunService, corpus *mockCorpusService, settings *mockSettingsService) *Services {
	if runs == nil {
		runs = &mockRunService{}
	}
	if corpus == nil {
		corpus = &mockCorpusService{}
	}
	if settings == nil {
		settings = newMockSettingsService()
	}
	return &Services{Runs: runs, Corpus: corpus, Settings: settings}
}

type mockRunService struct {
	run  *domain.MatchRun
	runs []domain.MatchRun
	err  error

	requests []driving.RunRequest
	deleted  []string
}

func (m *mockRunService) Run(_ context.Context, req driving.RunRequest) (*domain.MatchRun, error) {
	m.requests = append(m.requests, req)
	return m.run, m.err
}

func (m *mockRunService) List(_ context.Context) ([]domain.MatchRun, error) {
	return m.runs, m.err
}

func (m *mockRunService) Get(_ context.Context, _ string) (*domain.MatchRun, error) {
	return m.run, m.err
}

func (m *mockRunService) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

type mockCorpusService struct {
	result  *driving.BuildResult
	summary *domain.CorpusSummary
	refs    []domain.BookReference
	err     error

	builtBase  string
	builtBooks []driving.BookPages
	queryTopK  int
}

func (m *mockCorpusService) Build(_ context.Context, base string, books []driving.BookPages) (*driving.BuildResult, error) {
	m.builtBase = base
	m.builtBooks = books
	return m.result, m.err
}

func (m *mockCorpusService) Inspect(_ context.Context, _ string) (*domain.CorpusSummary, error) {
	return m.summary, m.err
}

func (m *mockCorpusService) Query(_ context.Context, _, _ string, topK int) ([]domain.BookReference, error) {
	m.queryTopK = topK
	return m.refs, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	pingErr     error

	saved       *domain.AppSettings
	matcherSets map[string]string
	provider    domain.AIProvider
	model       string
	apiKey      string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings:    domain.DefaultAppSettings(),
		matcherSets: make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.saved = settings
	return nil
}

func (m *mockSettingsService) Matcher() (domain.MatcherSettings, error) {
	return m.settings.Matcher, nil
}

func (m *mockSettingsService) SetMatcherValue(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.matcherSets[key] = value
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.pingErr
}
