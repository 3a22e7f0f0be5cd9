// Package gemini provides an embedding service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel = "text-embedding-004"

	// MaxBatch is the largest batch the API accepts per request.
	MaxBatch = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-004).
	Model string

	// Dimensions is the embedding vector size; looked up for known models.
	Dimensions int
}

// batchFunc embeds one batch of at most MaxBatch texts.
type batchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// EmbeddingService generates embeddings using the Gemini batch embed API.
type EmbeddingService struct {
	client     *genai.Client
	embed      batchFunc
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	em := client.EmbeddingModel(cfg.Model)
	svc := newService(cfg, func(ctx context.Context, texts []string) ([][]float32, error) {
		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		out := make([][]float32, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			if e != nil {
				out[i] = e.Values
			}
		}
		return out, nil
	})
	svc.client = client
	return svc, nil
}

func newService(cfg Config, embed batchFunc) *EmbeddingService {
	dims := cfg.Dimensions
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[cfg.Model]
	}
	return &EmbeddingService{
		embed:      embed,
		model:      cfg.Model,
		dimensions: dims,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds texts in requests of at most MaxBatch inputs.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatch {
		end := min(start+MaxBatch, len(texts))

		began := time.Now()
		got, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: gemini: batch embed: %w", domain.ErrProvider, err)
		}
		logger.Debug("gemini embeddings: %d inputs in %s", end-start, time.Since(began))

		if len(got) != end-start {
			return nil, fmt.Errorf("%w: gemini: %d embeddings for %d inputs",
				domain.ErrMalformedResponse, len(got), end-start)
		}
		for i, v := range got {
			if len(v) == 0 {
				return nil, fmt.Errorf("%w: gemini: empty embedding for input %d", domain.ErrMalformedResponse, start+i)
			}
		}
		out = append(out, got...)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a single word to validate the key and model.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
