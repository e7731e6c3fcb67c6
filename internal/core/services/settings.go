package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
	"github.com/custodia-labs/scribe/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyThreshold       = "matcher.similarity_threshold"
	keyIntervalSeconds = "matcher.interval_seconds"
	keySegmentMinutes  = "matcher.segment_minutes"
	keyTopK            = "matcher.top_k"
	keyDimensions      = "matcher.dimensions"
	keyKeyBase         = "matcher.transcript_key_base"
	keyParallelism     = "matcher.parallelism"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyRunsEnabled     = "storage.runs_enabled"
)

// matcherKeyPrefix prefixes the short names accepted by SetMatcherValue.
const matcherKeyPrefix = "matcher."

// defaultOllamaURL is used when switching to Ollama without a configured URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Matcher: domain.MatcherSettings{
			SimilarityThreshold: s.getFloat(keyThreshold, defaults.Matcher.SimilarityThreshold),
			IntervalSeconds:     s.getInt(keyIntervalSeconds, defaults.Matcher.IntervalSeconds),
			SegmentMinutes:      s.getInt(keySegmentMinutes, defaults.Matcher.SegmentMinutes),
			TopK:                s.getInt(keyTopK, defaults.Matcher.TopK),
			Dimensions:          s.getInt(keyDimensions, defaults.Matcher.Dimensions),
			TranscriptKeyBase:   s.getInt(keyKeyBase, defaults.Matcher.TranscriptKeyBase),
			Parallelism:         s.getInt(keyParallelism, defaults.Matcher.Parallelism),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Storage: domain.StorageSettings{
			RunsEnabled: s.getBool(keyRunsEnabled, defaults.Storage.RunsEnabled),
		},
	}

	return settings, nil
}

// Matcher returns the current matcher settings.
func (s *SettingsService) Matcher() (domain.MatcherSettings, error) {
	settings, err := s.Get()
	if err != nil {
		return domain.MatcherSettings{}, err
	}
	return settings.Matcher, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	m := settings.Matcher
	values := []struct {
		key   string
		value any
	}{
		{keyThreshold, m.SimilarityThreshold},
		{keyIntervalSeconds, m.IntervalSeconds},
		{keySegmentMinutes, m.SegmentMinutes},
		{keyTopK, m.TopK},
		{keyDimensions, m.Dimensions},
		{keyKeyBase, m.TranscriptKeyBase},
		{keyParallelism, m.Parallelism},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyRunsEnabled, settings.Storage.RunsEnabled},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	return nil
}

// SetMatcherValue parses, validates and stores one matcher setting.
// key may be given with or without the "matcher." prefix.
func (s *SettingsService) SetMatcherValue(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	m := settings.Matcher

	key = strings.TrimPrefix(strings.TrimSpace(key), matcherKeyPrefix)
	value = strings.TrimSpace(value)

	var stored any
	if key == "similarity_threshold" || key == "threshold" {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: similarity_threshold %q is not a number", domain.ErrInvalidSettings, value)
		}
		key = "similarity_threshold"
		m.SimilarityThreshold = f
		stored = f
	} else {
		target, ok := map[string]*int{
			"interval_seconds":    &m.IntervalSeconds,
			"segment_minutes":     &m.SegmentMinutes,
			"top_k":               &m.TopK,
			"dimensions":          &m.Dimensions,
			"transcript_key_base": &m.TranscriptKeyBase,
			"parallelism":         &m.Parallelism,
		}[key]
		if !ok {
			return fmt.Errorf("%w: unknown matcher setting %q", domain.ErrInvalidSettings, key)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q is not an integer", domain.ErrInvalidSettings, key, value)
		}
		*target = n
		stored = n
	}

	if err := m.Validate(); err != nil {
		return err
	}
	return s.configStore.Set(matcherKeyPrefix+key, stored)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	// Set base URL based on provider type
	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Update expected dimensions based on model
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Matcher.Dimensions = d
	}

	return s.Save(settings)
}

// Validate checks if current settings are valid.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Matcher.Validate(); err != nil {
		return err
	}

	// An unset provider is valid; ingestion and queries are simply unavailable.
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not fully configured",
			domain.ErrInvalidSettings, settings.Embedding.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getInt treats a stored zero as a real value; dimensions and key base use it.
func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
