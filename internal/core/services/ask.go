package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/guardrail"
	"github.com/custodia-labs/docintel/internal/core/parsing"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure AskService implements the interface.
var _ driving.AskService = (*AskService)(nil)

// Answer generation parameters.
const (
	answerTemperature = 0.1
	answerMaxTokens   = 1024
	contextSeparator  = "\n\n---\n\n"
)

// AskConfig holds the thresholds of the answering pipeline.
type AskConfig struct {
	SimilarityThreshold float64
	ConfidenceThreshold float64
	TopK                int
	MaxSources          int
	ProviderTimeout     time.Duration
}

// AskConfigFrom derives the pipeline configuration from settings.
func AskConfigFrom(settings *domain.AppSettings) AskConfig {
	return AskConfig{
		SimilarityThreshold: settings.RAG.SimilarityThreshold,
		ConfidenceThreshold: settings.RAG.ConfidenceThreshold,
		TopK:                settings.RAG.TopK,
		MaxSources:          settings.RAG.MaxSources,
		ProviderTimeout:     settings.Providers.Timeout,
	}
}

// AskService answers questions about one document at a time.
type AskService struct {
	docStore   driven.DocumentStore
	embedder   driven.EmbeddingService
	llmService driven.LLMService
	prompts    driven.PromptStore
	config     AskConfig
}

// NewAskService creates a new ask service.
func NewAskService(
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	llmService driven.LLMService,
	prompts driven.PromptStore,
	config AskConfig,
) *AskService {
	if config.TopK <= 0 {
		config.TopK = domain.DefaultTopK
	}
	if config.MaxSources <= 0 {
		config.MaxSources = domain.DefaultMaxSources
	}
	return &AskService{
		docStore:   docStore,
		embedder:   embedder,
		llmService: llmService,
		prompts:    prompts,
		config:     config,
	}
}

// Ask runs retrieval, the retrieval gate, generation and confidence fusion.
func (s *AskService) Ask(ctx context.Context, documentID, question string) (*domain.Answer, error) {
	logger.Section("Ask")
	logger.Debug("Document: %s, question: %q", documentID, question)

	if !s.docStore.Exists(ctx, documentID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, documentID)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	results, err := s.retrieve(ctx, documentID, question)
	if err != nil {
		return nil, err
	}

	verdict := guardrail.EvaluateRetrieval(results, s.config.SimilarityThreshold)
	logger.Debug("Retrieval gate: %s (best %.3f, mean %.3f)", verdict.Status, verdict.BestScore, verdict.Confidence)
	if verdict.Status.IsTerminal() {
		return &domain.Answer{
			Answer:          verdict.Message,
			Sources:         []domain.Source{},
			Confidence:      domain.Round3(verdict.Confidence),
			GuardrailStatus: verdict.Status,
		}, nil
	}

	if s.llmService == nil {
		return nil, domain.ErrLLMUnavailable
	}
	messages, err := s.answerMessages(results, question)
	if err != nil {
		return nil, err
	}

	raw, err := callProvider(ctx, s.config.ProviderTimeout, "generate answer",
		func(ctx context.Context) (string, error) {
			return s.llmService.Chat(ctx, messages, driven.ChatOptions{
				MaxTokens:   answerMaxTokens,
				Temperature: answerTemperature,
			})
		})
	if err != nil {
		return nil, err
	}

	parsed, ok := parsing.ParseAnswer(raw)
	if !ok {
		logger.Debug("Model output was not JSON, using raw text")
	}

	combined, status := guardrail.Fuse(verdict.Confidence, parsed.Confidence, s.config.ConfidenceThreshold)
	logger.Debug("Confidence: retrieval %.3f, model %.3f, combined %.3f -> %s",
		verdict.Confidence, parsed.Confidence, combined, status)

	return &domain.Answer{
		Answer:          parsed.Answer,
		Sources:         topSources(results, s.config.MaxSources),
		Confidence:      domain.Round3(combined),
		GuardrailStatus: status,
	}, nil
}

// retrieve embeds the question and searches the document's index.
func (s *AskService) retrieve(ctx context.Context, documentID, question string) ([]domain.RetrievedChunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	index, chunks, err := s.docStore.LoadIndex(ctx, documentID)
	if err != nil {
		return nil, err
	}

	query, err := callProvider(ctx, s.config.ProviderTimeout, "embed question",
		func(ctx context.Context) ([]float32, error) {
			return s.embedder.Embed(ctx, question)
		})
	if err != nil {
		return nil, err
	}
	domain.Normalize(query)

	hits, err := index.Search(ctx, query, s.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", documentID, err)
	}

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(chunks) {
			return nil, fmt.Errorf("%w: hit %d outside %d chunks", domain.ErrIndexNotFound, h.Position, len(chunks))
		}
		results = append(results, domain.RetrievedChunk{
			Text:     chunks[h.Position],
			Score:    h.Similarity,
			Position: h.Position,
		})
	}
	return results, nil
}

// answerMessages renders the system and user prompts for generation.
func (s *AskService) answerMessages(results []domain.RetrievedChunk, question string) ([]driven.ChatMessage, error) {
	system, err := s.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	user, err := s.prompts.Load(driven.PromptAnswerUser)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fmt.Sprintf(user, BuildContext(results), question)},
	}, nil
}

// BuildContext numbers the retrieved chunks in rank order with their relevance.
func BuildContext(results []domain.RetrievedChunk) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Chunk %d] (Relevance: %.2f)\n%s", i+1, r.Score, r.Text)
	}
	return strings.Join(parts, contextSeparator)
}

func topSources(results []domain.RetrievedChunk, n int) []domain.Source {
	n = min(n, len(results))
	sources := make([]domain.Source, n)
	for i := range sources {
		sources[i] = domain.Source{
			Text:            results[i].Text,
			SimilarityScore: domain.Round3(results[i].Score),
		}
	}
	return sources
}
