// Package gemini provides an LLM service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the model to use (default: gemini-1.5-flash).
	Model string
}

// LLMService provides completions using Gemini GenerateContent.
type LLMService struct {
	client *genai.Client
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
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
	return &LLMService{client: client, model: cfg.Model}, nil
}

// Chat maps the conversation onto a Gemini chat session: system messages
// become the system instruction, earlier turns become history and the final
// user message is sent.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	system, history, prompt, err := splitMessages(messages)
	if err != nil {
		return "", err
	}

	// A model value per call keeps generation settings out of shared state.
	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(float32(opts.Temperature))
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	cs := model.StartChat()
	cs.History = history

	start := time.Now()
	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: gemini: generate: %w", domain.ErrProvider, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: gemini: no text candidates returned", domain.ErrMalformedResponse)
	}
	logger.Debug("gemini chat: %d chars in %s", len(text), time.Since(start))
	return text, nil
}

// splitMessages separates system text, prior turns and the final user prompt.
func splitMessages(messages []driven.ChatMessage) (string, []*genai.Content, string, error) {
	var (
		system []string
		turns  []driven.ChatMessage
	)
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != driven.RoleUser {
		return "", nil, "", fmt.Errorf("gemini: conversation must end with a user message")
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == driven.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return strings.Join(system, "\n\n"), history, turns[len(turns)-1].Content, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model metadata to validate the key and model name.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *LLMService) Close() error {
	return s.client.Close()
}
