package domain

import "fmt"

const unknownDescription = "Unknown"

// Default matcher settings, as used by the production lecture pipeline.
const (
	DefaultSimilarityThreshold = 0.3
	DefaultIntervalSeconds     = 10
	DefaultSegmentMinutes      = 5
	DefaultTopK                = 5
	DefaultDimensions          = 384
	DefaultTranscriptKeyBase   = 1
	DefaultParallelism         = 1
)

// MatcherSettings holds the tunable parameters of segment alignment and cross-referencing.
type MatcherSettings struct {
	// SimilarityThreshold is the minimum cosine similarity for a book match
	// or a continuity link to be accepted.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// IntervalSeconds is the wall-clock duration of one fine-grained interval.
	IntervalSeconds int `json:"interval_seconds"`

	// SegmentMinutes is the nominal duration of one coarse lecture segment.
	SegmentMinutes int `json:"segment_minutes"`

	// TopK is the maximum number of book references per segment.
	TopK int `json:"top_k"`

	// Dimensions is the expected embedding size. Zero infers it from the corpus.
	Dimensions int `json:"dimensions"`

	// TranscriptKeyBase is the number added to an interval index to form its
	// text mapping key: 1 means segment_1 describes interval 0.
	TranscriptKeyBase int `json:"transcript_key_base"`

	// Parallelism bounds the number of segments ranked concurrently.
	// 1 ranks inline with continuity detection.
	Parallelism int `json:"parallelism"`
}

// DefaultMatcherSettings returns the production defaults.
func DefaultMatcherSettings() MatcherSettings {
	return MatcherSettings{
		SimilarityThreshold: DefaultSimilarityThreshold,
		IntervalSeconds:     DefaultIntervalSeconds,
		SegmentMinutes:      DefaultSegmentMinutes,
		TopK:                DefaultTopK,
		Dimensions:          DefaultDimensions,
		TranscriptKeyBase:   DefaultTranscriptKeyBase,
		Parallelism:         DefaultParallelism,
	}
}

// SegmentSeconds returns the nominal segment duration in seconds.
func (m MatcherSettings) SegmentSeconds() int {
	return m.SegmentMinutes * 60
}

// EmbeddingsPerSegment returns how many intervals make up one segment.
// A segment duration that is not a multiple of the interval duration is
// rounded up so no wall-clock time falls between segments.
func (m MatcherSettings) EmbeddingsPerSegment() int {
	if m.IntervalSeconds <= 0 {
		return 0
	}
	return (m.SegmentSeconds() + m.IntervalSeconds - 1) / m.IntervalSeconds
}

// Validate reports the first invalid setting.
func (m MatcherSettings) Validate() error {
	switch {
	case m.SimilarityThreshold < -1 || m.SimilarityThreshold > 1:
		return fmt.Errorf("%w: similarity threshold %.3f outside [-1, 1]", ErrInvalidSettings, m.SimilarityThreshold)
	case m.IntervalSeconds <= 0:
		return fmt.Errorf("%w: interval seconds must be positive, got %d", ErrInvalidSettings, m.IntervalSeconds)
	case m.SegmentMinutes <= 0:
		return fmt.Errorf("%w: segment minutes must be positive, got %d", ErrInvalidSettings, m.SegmentMinutes)
	case m.SegmentSeconds() < m.IntervalSeconds:
		return fmt.Errorf("%w: segment (%ds) shorter than one interval (%ds)",
			ErrInvalidSettings, m.SegmentSeconds(), m.IntervalSeconds)
	case m.TopK <= 0:
		return fmt.Errorf("%w: top-k must be positive, got %d", ErrInvalidSettings, m.TopK)
	case m.Dimensions < 0:
		return fmt.Errorf("%w: dimensions must not be negative, got %d", ErrInvalidSettings, m.Dimensions)
	case m.TranscriptKeyBase != 0 && m.TranscriptKeyBase != 1:
		return fmt.Errorf("%w: transcript key base must be 0 or 1, got %d", ErrInvalidSettings, m.TranscriptKeyBase)
	case m.Parallelism < 1:
		return fmt.Errorf("%w: parallelism must be at least 1, got %d", ErrInvalidSettings, m.Parallelism)
	}
	return nil
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// AllEmbeddingProviders returns the providers that can generate embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings controls run persistence.
type StorageSettings struct {
	// RunsEnabled persists every match run to the metadata database.
	RunsEnabled bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Matcher   MatcherSettings
	Embedding EmbeddingSettings
	Storage   StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured; book ingestion needs one.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Matcher:   DefaultMatcherSettings(),
		Embedding: EmbeddingSettings{},
		Storage:   StorageSettings{RunsEnabled: true},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"all-minilm":             384,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}
