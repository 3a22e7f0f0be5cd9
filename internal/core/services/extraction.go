package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/parsing"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// Extraction generation parameters.
const (
	extractTemperature = 0.1
	extractMaxTokens   = 1024
)

// ExtractionConfig bounds the text sent to the model.
type ExtractionConfig struct {
	MaxChars        int
	MaxTokens       int
	ProviderTimeout time.Duration
}

// ExtractionConfigFrom derives the extraction configuration from settings.
func ExtractionConfigFrom(settings *domain.AppSettings) ExtractionConfig {
	return ExtractionConfig{
		MaxChars:        settings.Extraction.MaxChars,
		MaxTokens:       settings.Extraction.MaxTokens,
		ProviderTimeout: settings.Providers.Timeout,
	}
}

// ExtractionService extracts the shipment record from stored documents.
type ExtractionService struct {
	docStore   driven.DocumentStore
	llmService driven.LLMService
	prompts    driven.PromptStore
	tokenizer  driven.Tokenizer
	config     ExtractionConfig
}

// NewExtractionService creates a new extraction service.
// The tokenizer is optional; without it only the character bound applies.
func NewExtractionService(
	docStore driven.DocumentStore,
	llmService driven.LLMService,
	prompts driven.PromptStore,
	tokenizer driven.Tokenizer,
	config ExtractionConfig,
) *ExtractionService {
	if config.MaxChars <= 0 {
		config.MaxChars = domain.DefaultExtractionMaxChars
	}
	return &ExtractionService{
		docStore:   docStore,
		llmService: llmService,
		prompts:    prompts,
		tokenizer:  tokenizer,
		config:     config,
	}
}

// Extract returns the fixed-schema record and its confidence.
func (s *ExtractionService) Extract(ctx context.Context, documentID string) (*domain.ExtractionResult, error) {
	logger.Section("Extract")
	logger.Debug("Document: %s", documentID)

	if !s.docStore.Exists(ctx, documentID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, documentID)
	}
	if s.llmService == nil {
		return nil, domain.ErrLLMUnavailable
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	text := truncateRunes(doc.FullText, s.config.MaxChars)
	if s.tokenizer != nil && s.config.MaxTokens > 0 {
		text = s.tokenizer.Truncate(text, s.config.MaxTokens)
	}
	logger.Debug("Prompt text: %d of %d bytes", len(text), len(doc.FullText))

	system, err := s.prompts.Load(driven.PromptExtractionSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	user, err := s.prompts.Load(driven.PromptExtractionUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, text)},
	}

	raw, err := callProvider(ctx, s.config.ProviderTimeout, "extract shipment",
		func(ctx context.Context) (string, error) {
			return s.llmService.Chat(ctx, messages, driven.ChatOptions{
				MaxTokens:   extractMaxTokens,
				Temperature: extractTemperature,
			})
		})
	if err != nil {
		return nil, err
	}

	record, confidence, ok := parsing.ParseShipment(raw)
	if !ok {
		logger.Warn("Extraction output for %s was not JSON, returning empty record", documentID)
	}
	logger.Debug("Extracted %d/%d fields", record.Found(), len(domain.ShipmentFields))

	return &domain.ExtractionResult{
		DocumentID: documentID,
		Data:       record,
		Confidence: domain.Round3(confidence),
	}, nil
}
