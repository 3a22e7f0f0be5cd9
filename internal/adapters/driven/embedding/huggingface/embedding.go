// Package huggingface provides an embedding service adapter using the
// Hugging Face feature-extraction inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"
	DefaultModel   = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Hugging Face embedding service.
type Config struct {
	// APIKey is the Hugging Face access token (required).
	APIKey string

	// BaseURL is the feature-extraction endpoint; the model id is appended.
	BaseURL string

	// Model is the sentence-transformers model id.
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the embedding vector size; looked up for known models.
	Dimensions int
}

// EmbeddingService generates embeddings using Hugging Face inference.
type EmbeddingService struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	model      string
	dimensions int
}

type featureRequest struct {
	Inputs  []string       `json:"inputs"`
	Options featureOptions `json:"options"`
}

type featureOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewEmbeddingService creates a new Hugging Face embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface: API token is required")
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
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.Model,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(featureRequest{
		Inputs:  texts,
		Options: featureOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: send request: %w", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: read response: %w", domain.ErrProvider, err)
	}
	logger.Debug("huggingface embeddings: %d inputs, status %d in %s", len(texts), resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: huggingface error (status %d): %s", domain.ErrProvider, resp.StatusCode, errorMessage(body))
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: huggingface: decode response: %w", domain.ErrMalformedResponse, err)
	}
	if len(rows) != len(texts) {
		return nil, fmt.Errorf("%w: huggingface: %d embeddings for %d inputs",
			domain.ErrMalformedResponse, len(rows), len(texts))
	}

	embeddings := make([][]float32, len(rows))
	for i, row := range rows {
		vec, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: huggingface: input %d: %w", domain.ErrMalformedResponse, i, err)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// decodeRow accepts a sentence vector, or per-token vectors which are mean pooled.
func decodeRow(raw json.RawMessage) ([]float32, error) {
	var sentence []float64
	if err := json.Unmarshal(raw, &sentence); err == nil {
		if len(sentence) == 0 {
			return nil, fmt.Errorf("empty vector")
		}
		return toFloat32(sentence), nil
	}

	var tokens [][]float64
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, err
	}
	if len(tokens) == 0 || len(tokens[0]) == 0 {
		return nil, fmt.Errorf("empty token vectors")
	}
	dim := len(tokens[0])
	sum := make([]float64, dim)
	for _, tok := range tokens {
		if len(tok) != dim {
			return nil, fmt.Errorf("ragged token vectors")
		}
		for j, v := range tok {
			sum[j] += v
		}
	}
	for j := range sum {
		sum[j] /= float64(len(tokens))
	}
	return toFloat32(sum), nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// errorMessage extracts {"error": "..."} when present.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}

// Dimensions returns the embedding vector size, or 0 for unknown models.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a single word. The inference API has no cheaper authenticated probe.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("huggingface: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
