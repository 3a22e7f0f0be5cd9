// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/docintel/internal/adapters/driven/embedding/gemini"
	hfembed "github.com/custodia-labs/docintel/internal/adapters/driven/embedding/huggingface"
	ollamaembed "github.com/custodia-labs/docintel/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/docintel/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/docintel/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/docintel/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/docintel/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/docintel/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// errNoEmbeddings is returned for providers without an embeddings API.
var errNoEmbeddings = errors.New("anthropic does not support embeddings, use huggingface, openai, ollama or gemini")

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues found while connecting.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates both services and pings them. Configuration errors leave a
// service nil. A failed ping is only a warning: the service is kept so each
// request can succeed once the provider recovers.
func Init(ctx context.Context, settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	if settings == nil {
		return result
	}

	embed, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v. Run 'docintel settings validate' to check",
			domain.ErrEmbeddingUnavailable, err))
	} else if embed != nil {
		if err := ping(ctx, embed.Ping); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"embedding service not reachable yet (%v), requests will retry", err))
		}
		result.EmbeddingService = embed
	}

	llm, err := CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v. Run 'docintel settings validate' to check",
			domain.ErrLLMUnavailable, err))
	} else if llm != nil {
		if err := ping(ctx, llm.Ping); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"LLM service not reachable yet (%v), requests will retry", err))
		}
		result.LLMService = llm
	}

	return result
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(pingCtx)
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(
	ctx context.Context, settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docintel settings validate' to check",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'docintel settings validate' to check",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docintel settings validate' to check",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'docintel settings validate' to check",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(context.Background(), settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(context.Background(), settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, errNoEmbeddings
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderHuggingFace:
		return hfembed.NewEmbeddingService(hfembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderOllama:
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderHuggingFace:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = openaillm.HuggingFaceRouterURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   settings.Model,
			Name:    string(domain.AIProviderHuggingFace),
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
