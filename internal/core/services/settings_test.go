package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scribe/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/scribe/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("matcher.similarity_threshold", 0.45)
	_ = store.Set("matcher.top_k", int64(8))
	_ = store.Set("matcher.dimensions", 0)
	_ = store.Set("matcher.transcript_key_base", 0)
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("storage.runs_enabled", false)

	service := NewSettingsService(store, nil)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.InDelta(t, 0.45, settings.Matcher.SimilarityThreshold, 1e-12)
	assert.Equal(t, 8, settings.Matcher.TopK)
	assert.Equal(t, 0, settings.Matcher.Dimensions, "stored zero must not fall back to the default")
	assert.Equal(t, 0, settings.Matcher.TranscriptKeyBase)
	assert.Equal(t, domain.DefaultIntervalSeconds, settings.Matcher.IntervalSeconds)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.False(t, settings.Storage.RunsEnabled)
}

func TestSettingsService_Get_InvalidProviderReturnsDefault(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")

	settings, err := NewSettingsService(store, nil).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProvider(""), settings.Embedding.Provider)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	want := domain.DefaultAppSettings()
	want.Matcher.TopK = 3
	want.Matcher.SimilarityThreshold = 0.5
	want.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "text-embedding-3-small",
		APIKey:   "sk-test",
	}
	want.Storage.RunsEnabled = false

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_SetMatcherValue(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(*testing.T, domain.MatcherSettings)
	}{
		{"threshold", "0.42", func(t *testing.T, m domain.MatcherSettings) {
			assert.InDelta(t, 0.42, m.SimilarityThreshold, 1e-12)
		}},
		{"matcher.top_k", "7", func(t *testing.T, m domain.MatcherSettings) { assert.Equal(t, 7, m.TopK) }},
		{"interval_seconds", "5", func(t *testing.T, m domain.MatcherSettings) { assert.Equal(t, 5, m.IntervalSeconds) }},
		{"segment_minutes", "10", func(t *testing.T, m domain.MatcherSettings) { assert.Equal(t, 10, m.SegmentMinutes) }},
		{"dimensions", "0", func(t *testing.T, m domain.MatcherSettings) { assert.Equal(t, 0, m.Dimensions) }},
		{"transcript_key_base", "0", func(t *testing.T, m domain.MatcherSettings) {
			assert.Equal(t, 0, m.TranscriptKeyBase)
		}},
		{"parallelism", " 4 ", func(t *testing.T, m domain.MatcherSettings) { assert.Equal(t, 4, m.Parallelism) }},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(), nil)

			require.NoError(t, service.SetMatcherValue(tt.key, tt.value))

			m, err := service.Matcher()
			require.NoError(t, err)
			tt.check(t, m)
		})
	}
}

func TestSettingsService_SetMatcherValue_Rejects(t *testing.T) {
	tests := []struct{ key, value string }{
		{"threshold", "high"},
		{"threshold", "1.5"},
		{"top_k", "0"},
		{"top_k", "2.5"},
		{"transcript_key_base", "2"},
		{"segment_minutes", "-1"},
		{"parallelism", "0"},
		{"colour", "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.SetMatcherValue(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidSettings)
			m, _ := service.Matcher()
			assert.Equal(t, domain.DefaultMatcherSettings(), m, "rejected values must not be stored")
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("ollama defaults", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, "all-minilm", settings.Embedding.Model)
		assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
		assert.Equal(t, 384, settings.Matcher.Dimensions)
	})

	t.Run("openai updates dimensions", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)

		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "sk-1"))

		settings, err := service.Get()
		require.NoError(t, err)
		assert.Equal(t, 3072, settings.Matcher.Dimensions)
		assert.Empty(t, settings.Embedding.BaseURL)
		assert.Equal(t, "sk-1", settings.Embedding.APIKey)
	})

	t.Run("openai requires key", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.Error(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))
	})

	t.Run("unknown provider", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.Error(t, service.SetEmbeddingProvider("cohere", "", ""))
	})
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	require.NoError(t, service.Validate())

	_ = store.Set("embedding.provider", "openai")
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidSettings)

	_ = store.Set("embedding.api_key", "sk-1")
	require.NoError(t, service.Validate())

	_ = store.Set("matcher.top_k", 0)
	assert.ErrorIs(t, service.Validate(), domain.ErrInvalidSettings)
}

type stubValidator struct {
	err  error
	seen *domain.EmbeddingSettings
}

func (s *stubValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	s.seen = cfg
	return s.err
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).ValidateEmbeddingConfig())

	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "ollama")
	validator := &stubValidator{err: errors.New("unreachable")}

	err := NewSettingsService(store, validator).ValidateEmbeddingConfig()

	assert.EqualError(t, err, "unreachable")
	require.NotNil(t, validator.seen)
	assert.Equal(t, domain.AIProviderOllama, validator.seen.Provider)
}
