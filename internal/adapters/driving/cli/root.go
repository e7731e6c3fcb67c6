// Package cli implements the scribe command line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scribe/internal/core/ports/driving"
	"github.com/custodia-labs/scribe/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Services holds the driving ports the commands operate on.
type Services struct {
	Runs     driving.RunService
	Corpus   driving.CorpusService
	Settings driving.SettingsService

	// Close releases adapters opened for the services. Optional.
	Close func()
}

// Bootstrap builds services for a config directory ("" means the default).
type Bootstrap func(configDir string) (*Services, error)

var (
	runService      driving.RunService
	corpusService   driving.CorpusService
	settingsService driving.SettingsService

	bootstrap     Bootstrap
	closeServices func()
)

var (
	verboseFlag   bool
	configDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Cross-reference lecture segments with textbook passages",
	Long: `Scribe aligns fine-grained lecture intervals into fixed-duration segments,
retrieves the textbook passages most similar to each segment and links every
segment to the earlier segments it continues.

Typical workflow:
  scribe settings set embedding.provider ollama
  scribe corpus build --name Physics books/physics physics.txt
  scribe match --corpus books/physics --embeddings lecture01_embeddings.npy \
      --transcripts lecture01.json`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "configuration directory (default ~/.scribe)")
}

// SetServices injects already constructed services.
func SetServices(s *Services) {
	if s == nil {
		runService, corpusService, settingsService, closeServices = nil, nil, nil, nil
		return
	}
	runService = s.Runs
	corpusService = s.Corpus
	settingsService = s.Settings
	closeServices = s.Close
}

// SetBootstrap registers the function that builds services once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
// Services are released even when the command fails.
func Execute() error {
	defer teardownServices(nil, nil) //nolint:errcheck // always nil
	return rootCmd.Execute()
}

func setupServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	if bootstrap == nil || settingsService != nil {
		return nil
	}
	services, err := bootstrap(configDirFlag)
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
	return nil
}

var (
	errRunsNotConfigured     = errors.New("run service not configured")
	errCorpusNotConfigured   = errors.New("corpus service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)
