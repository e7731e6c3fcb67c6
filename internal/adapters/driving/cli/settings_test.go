package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/scribe/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	t.Run("prints sections", func(t *testing.T) {
		settings := newMockSettingsService()
		settings.settings.Embedding = domain.EmbeddingSettings{
			Provider: domain.AIProviderOpenAI,
			Model:    "text-embedding-3-small",
			APIKey:   "sk-1234567890abcdef",
		}

		out, err := executeCommand(t, newTestServices(nil, nil, settings), nil, "settings", "show")

		require.NoError(t, err)
		assert.Contains(t, out, "[Matcher]")
		assert.Contains(t, out, "Segment: 5 min (30 intervals)")
		assert.Contains(t, out, "Dimensions: 384")
		assert.Contains(t, out, "API Key: sk-1...cdef")
		assert.Contains(t, out, "Saved runs: enabled")
		assert.Contains(t, out, "Configuration is valid.")
	})

	t.Run("warns on invalid configuration", func(t *testing.T) {
		settings := newMockSettingsService()
		settings.validateErr = errors.New("embedding provider not configured")

		out, err := executeCommand(t, newTestServices(nil, nil, settings), nil, "settings")

		require.NoError(t, err)
		assert.Contains(t, out, "Warning: embedding provider not configured")
	})
}

func TestSettingsSetCmd(t *testing.T) {
	t.Run("matcher value", func(t *testing.T) {
		settings := newMockSettingsService()

		out, err := executeCommand(t, newTestServices(nil, nil, settings), nil, "settings", "set", "top_k", "7")

		require.NoError(t, err)
		assert.Contains(t, out, "Set top_k = 7")
		assert.Equal(t, "7", settings.matcherSets["top_k"])
	})

	t.Run("negative value", func(t *testing.T) {
		settings := newMockSettingsService()

		out, err := executeCommand(t, newTestServices(nil, nil, settings), nil,
			"settings", "set", "similarity_threshold", "-0.2")

		require.NoError(t, err)
		assert.Contains(t, out, "Set similarity_threshold = -0.2")
		assert.Equal(t, "-0.2", settings.matcherSets["similarity_threshold"])
	})

	t.Run("matcher value rejected", func(t *testing.T) {
		settings := newMockSettingsService()
		settings.setErr = domain.ErrInvalidSettings

		_, err := executeCommand(t, newTestServices(nil, nil, settings), nil, "settings", "set", "top_k", "-1")

		assert.ErrorIs(t, err, domain.ErrInvalidSettings)
	})

	t.Run("storage toggle", func(t *testing.T) {
		settings := newMockSettingsService()

		_, err := executeCommand(t, newTestServices(nil, nil, settings), nil,
			"settings", "set", "storage.runs_enabled", "false")

		require.NoError(t, err)
		require.NotNil(t, settings.saved)
		assert.False(t, settings.saved.Storage.RunsEnabled)
	})

	t.Run("storage toggle requires boolean", func(t *testing.T) {
		settings := newMockSettingsService()

		_, err := executeCommand(t, newTestServices(nil, nil, settings), nil,
			"settings", "set", "storage.runs_enabled", "maybe")

		assert.ErrorIs(t, err, domain.ErrInvalidSettings)
		assert.Nil(t, settings.saved)
	})

	t.Run("base url", func(t *testing.T) {
		settings := newMockSettingsService()

		_, err := executeCommand(t, newTestServices(nil, nil, settings), nil,
			"settings", "set", "embedding.base_url", "http://gpu-box:11434")

		require.NoError(t, err)
		require.NotNil(t, settings.saved)
		assert.Equal(t, "http://gpu-box:11434", settings.saved.Embedding.BaseURL)
	})

	t.Run("provider keys redirect to embedding command", func(t *testing.T) {
		_, err := executeCommand(t, newTestServices(nil, nil, nil), nil,
			"settings", "set", "embedding.model", "nomic-embed-text")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "scribe settings embedding")
	})
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	t.Run("openai with api key", func(t *testing.T) {
		settings := newMockSettingsService()
		stdin := strings.NewReader("2\n\nsk-test-key-123456\n")

		out, err := executeCommand(t, newTestServices(nil, nil, settings), stdin, "settings", "embedding")

		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOpenAI, settings.provider)
		assert.Equal(t, "text-embedding-3-small", settings.model)
		assert.Equal(t, "sk-test-key-123456", settings.apiKey)
		assert.Contains(t, out, "OK")
	})

	t.Run("ollama defaults", func(t *testing.T) {
		settings := newMockSettingsService()
		stdin := strings.NewReader("\nnomic-embed-text\n")

		_, err := executeCommand(t, newTestServices(nil, nil, settings), stdin, "settings", "embedding")

		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOllama, settings.provider)
		assert.Equal(t, "nomic-embed-text", settings.model)
		assert.Empty(t, settings.apiKey)
	})

	t.Run("missing api key", func(t *testing.T) {
		settings := newMockSettingsService()
		stdin := strings.NewReader("2\n\n\n")

		_, err := executeCommand(t, newTestServices(nil, nil, settings), stdin, "settings", "embedding")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
		assert.Empty(t, settings.provider)
	})

	t.Run("validation failure", func(t *testing.T) {
		settings := newMockSettingsService()
		settings.pingErr = domain.ErrEmbeddingUnavailable
		stdin := strings.NewReader("1\n\n")

		out, err := executeCommand(t, newTestServices(nil, nil, settings), stdin, "settings", "embedding")

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, out, "FAILED")
	})
}
