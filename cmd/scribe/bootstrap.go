package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/scribe/internal/adapters/driven/ai"
	"github.com/custodia-labs/scribe/internal/adapters/driven/config/file"
	"github.com/custodia-labs/scribe/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scribe/internal/adapters/driven/storage/npy"
	"github.com/custodia-labs/scribe/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/scribe/internal/adapters/driving/cli"
	"github.com/custodia-labs/scribe/internal/chunker"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/core/services"
	"github.com/custodia-labs/scribe/internal/logger"
)

// bootstrap wires adapters into services for the given config directory.
func bootstrap(configDir string) (*cli.Services, error) {
	var configStore driven.ConfigStore
	fileStore, err := file.NewConfigStore(configDir)
	switch {
	case err == nil:
		configStore = fileStore
	case configDir != "":
		return nil, fmt.Errorf("opening config: %w", err)
	default:
		logger.Warn("no config directory, settings will not persist: %v", err)
		configStore = memory.NewConfigStore()
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	// Left running so "scribe settings set" can repair a bad value.
	if err := settings.Matcher.Validate(); err != nil {
		logger.Warn("%v", err)
	}

	var closers []func()

	var runStore driven.RunStore
	if settings.Storage.RunsEnabled {
		dataDir := ""
		if configDir != "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		switch {
		case err == nil:
			logger.Debug("Run store: %s", store.Path())
			runStore = store.RunStore()
			closers = append(closers, func() { store.Close() }) //nolint:errcheck
		case configDir != "":
			return nil, fmt.Errorf("opening run store: %w", err)
		default:
			logger.Warn("runs kept in memory for this session: %v", err)
			runStore = memory.NewRunStore()
		}
	}

	// Matching works without embeddings; only corpus building and queries need them.
	embedding, err := ai.CreateAndValidateEmbeddingService(
		context.Background(), &settings.Embedding, settings.Matcher.Dimensions)
	if err != nil {
		logger.Warn("%v", err)
	}
	if embedding != nil {
		closers = append(closers, func() { embedding.Close() }) //nolint:errcheck
	}

	corpora := npy.NewCorpusStore(settings.Matcher.Dimensions)
	corpusService := services.NewCorpusService(corpora, embedding, chunker.New(), settings.Matcher)
	runService := services.NewRunService(
		corpora, npy.NewIntervalSource(), runStore, settings.Matcher, services.LogObserver{},
	)

	return &cli.Services{
		Runs:     runService,
		Corpus:   corpusService,
		Settings: settingsService,
		Close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
