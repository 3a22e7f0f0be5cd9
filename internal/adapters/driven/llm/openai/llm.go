// Package openai provides an LLM service adapter for the OpenAI chat
// completions API and compatible routers such as Hugging Face's.
package openai

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

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second

	// HuggingFaceRouterURL serves open models behind the same API shape.
	HuggingFaceRouterURL = "https://router.huggingface.co/v1"
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the API key or access token (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// Name labels errors and logs; defaults to "openai".
	Name string
}

// LLMService provides completions using an OpenAI-compatible API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	name    string
}

type chatCompletionRequest struct {
	Model    string              `json:"model"`
	Messages []chatCompletionMsg `json:"messages"`

	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature is always sent so 0.0 means deterministic rather than the API default.
	Temperature float64 `json:"temperature"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", cfg.Name)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		name:    cfg.Name,
	}, nil
}

// Chat returns the first choice of a chat completion.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{Role: msg.Role, Content: msg.Content}
	}

	reqBody := chatCompletionRequest{
		Model:       s.model,
		Messages:    chatMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: send request: %w", domain.ErrProvider, s.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: read response: %w", domain.ErrProvider, s.name, err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: %s error (status %d): %s", domain.ErrProvider, s.name, resp.StatusCode, string(body))
		}
		return "", fmt.Errorf("%w: %s: decode response: %w", domain.ErrMalformedResponse, s.name, err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s error: %s", domain.ErrProvider, s.name, chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s error (status %d): %s", domain.ErrProvider, s.name, resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s: no response choices returned", domain.ErrMalformedResponse, s.name)
	}

	logger.Debug("%s chat: %d prompt / %d completion tokens in %s (%s)", s.name,
		chatResp.Usage.PromptTokens, chatResp.Usage.CompletionTokens, time.Since(start), chatResp.Choices[0].FinishReason)
	return chatResp.Choices[0].Message.Content, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models, without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create ping request: %w", s.name, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: ping failed: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s: API returned status %d (failed to read body: %w)", s.name, resp.StatusCode, err)
		}
		return fmt.Errorf("%s: API returned status %d: %s", s.name, resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
