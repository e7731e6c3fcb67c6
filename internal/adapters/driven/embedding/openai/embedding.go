// Package openai embeds book chunks and corpus queries through the OpenAI
// embeddings API.
//
// Corpus vectors are only comparable with lecture intervals when both live in
// the same space, so the service is built for a target size and asks the
// text-embedding-3 models to shorten their output to it.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/scribe/internal/core/domain"
	"github.com/custodia-labs/scribe/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// ErrUnsupportedDimensions is returned when a model cannot produce vectors
// of the requested size.
var ErrUnsupportedDimensions = errors.New("openai: unsupported dimensions")

// model describes what an embedding model can produce.
type model struct {
	native   int
	shortens bool
}

var models = map[string]model{
	"text-embedding-3-small": {native: 1536, shortens: true},
	"text-embedding-3-large": {native: 3072, shortens: true},
	"text-embedding-ada-002": {native: 1536},
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Compatible gateways can be used.
	BaseURL string

	// Model defaults to text-embedding-3-small.
	Model string

	// Timeout bounds one request (default 60s).
	Timeout time.Duration

	// Dimensions is the size of the lecture embedding space the corpus must
	// match. Zero keeps the model's native size.
	Dimensions int
}

// EmbeddingService generates corpus embeddings using the OpenAI API.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	// shorten reports whether requests carry the dimensions field.
	shorten bool
}

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewEmbeddingService creates a service producing vectors of cfg.Dimensions.
// Models that cannot be shortened must already have that size.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Dimensions < 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDimensions, cfg.Dimensions)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	svc := &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}

	m, known := models[cfg.Model]
	switch {
	case !known:
		// Gateways serving other models: trust the configured size.
		if svc.dimensions == 0 {
			svc.dimensions = models[DefaultModel].native
		}
	case cfg.Dimensions == 0 || cfg.Dimensions == m.native:
		svc.dimensions = m.native
	case !m.shortens:
		return nil, fmt.Errorf("%w: %s always returns %d values, corpus needs %d",
			ErrUnsupportedDimensions, cfg.Model, m.native, cfg.Dimensions)
	case cfg.Dimensions > m.native:
		return nil, fmt.Errorf("%w: %s returns at most %d values, corpus needs %d",
			ErrUnsupportedDimensions, cfg.Model, m.native, cfg.Dimensions)
	default:
		svc.shorten = true
	}
	return svc, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request. Vectors come back in input order
// and always have Dimensions values.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body := embedRequest{Model: s.model, Input: texts}
	if s.shorten {
		body.Dimensions = s.dimensions
	}

	var resp embedResponse
	if err := s.post(ctx, "/embeddings", body, &resp); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		if len(d.Embedding) != s.dimensions {
			return nil, &domain.DimensionError{
				Expected: s.dimensions,
				Got:      len(d.Embedding),
				Context:  "openai " + s.model,
			}
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}
	for i, vec := range vectors {
		if vec == nil {
			return nil, fmt.Errorf("openai: no embedding returned for text %d", i)
		}
	}
	return vectors, nil
}

func (s *EmbeddingService) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *EmbeddingService) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

// statusError prefers the API's own message over the raw body.
func statusError(status int, raw []byte) error {
	var apiErr apiError
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
		return fmt.Errorf("openai error (status %d): %s", status, apiErr.Error.Message)
	}
	return fmt.Errorf("openai error (status %d): %s", status, string(raw))
}

// Dimensions returns the size of the vectors this service produces.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks the API key against the models endpoint without embedding anything.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body) //nolint:errcheck // best-effort detail
		return statusError(resp.StatusCode, raw)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
