package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// Suggested question generation parameters.
const (
	suggestContextChars = 3000
	suggestCount        = 5
	suggestTemperature  = 0.7
	suggestMaxTokens    = 256
	suggestSystemPrompt = "You are a helpful assistant that generates questions for logistics documents."
)

// FallbackQuestions is returned whenever questions cannot be generated.
var FallbackQuestions = []string{
	"What is the shipment ID?",
	"Who is the shipper?",
	"What is the delivery date?",
	"What is the total weight?",
	"Who is the consignee?",
}

// DocumentConfig tunes ingestion.
type DocumentConfig struct {
	// ProviderTimeout bounds each embedding or LLM call.
	ProviderTimeout time.Duration

	// SuggestQuestions enables question suggestions after upload.
	SuggestQuestions bool
}

// DocumentService ingests documents and serves their metadata.
type DocumentService struct {
	docStore    driven.DocumentStore
	catalog     driven.DocumentCatalog
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	cipher      driven.Cipher
	llmService  driven.LLMService
	prompts     driven.PromptStore
	config      DocumentConfig
	newID       func() string
	now         func() time.Time
}

// NewDocumentService creates a new document service.
// The LLM service and prompt store are optional and only used for suggestions.
func NewDocumentService(
	docStore driven.DocumentStore,
	catalog driven.DocumentCatalog,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	cipher driven.Cipher,
	config DocumentConfig,
) *DocumentService {
	return &DocumentService{
		docStore:    docStore,
		catalog:     catalog,
		normalisers: normalisers,
		pipeline:    pipeline,
		embedder:    embedder,
		cipher:      cipher,
		config:      config,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

// SetLLMService sets the model used for question suggestions.
func (s *DocumentService) SetLLMService(llm driven.LLMService) {
	s.llmService = llm
}

// SetPromptStore sets the prompt templates.
func (s *DocumentService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Upload validates, encrypts, extracts, chunks, embeds and indexes a document.
func (s *DocumentService) Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	logger.Section("Document Upload")
	logger.Debug("File: %q (%d bytes)", filename, len(data))

	format, err := domain.FormatFromFilename(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	id := s.newID()
	logger.Debug("Document ID: %s, format: %s", id, format)

	blob, err := s.cipher.Encrypt(data)
	if err != nil {
		return nil, fmt.Errorf("encrypt upload: %w", err)
	}

	text, err := s.normalisers.Normalise(ctx, format, data)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: unreadable %s file: %w", domain.ErrValidation, format, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}
	logger.Debug("Extracted %d characters", utf8.RuneCountInString(text))

	doc := &domain.Document{
		ID:        id,
		Filename:  filename,
		Format:    format,
		FullText:  text,
		CreatedAt: s.now().UTC(),
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	logger.Debug("Chunked into %d pieces", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := callProvider(ctx, s.config.ProviderTimeout, "embed chunks",
		func(ctx context.Context) ([][]float32, error) {
			return s.embedder.EmbedBatch(ctx, texts)
		})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrMalformedResponse, len(vectors), len(texts))
	}
	for _, v := range vectors {
		domain.Normalize(v)
	}

	if err := s.docStore.SaveIndex(ctx, id, vectors, texts); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}
	if err := s.docStore.SaveOriginal(ctx, id, format, blob); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc.ChunkCount = len(chunks)
	if err := s.docStore.PutDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("cache document: %w", err)
	}
	if s.catalog != nil {
		if err := s.catalog.Record(ctx, doc); err != nil {
			return nil, fmt.Errorf("record document: %w", err)
		}
	}
	logger.Info("Indexed %s as %s (%d chunks)", filename, id, doc.ChunkCount)

	result := &domain.UploadResult{
		DocumentID: id,
		Filename:   filename,
		ChunkCount: doc.ChunkCount,
	}
	if s.config.SuggestQuestions {
		result.SuggestedQuestions = s.suggest(ctx, text)
	}
	return result, nil
}

// Get returns document metadata including the full text.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if !s.docStore.Exists(ctx, documentID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, documentID)
	}
	return s.docStore.GetDocument(ctx, documentID)
}

// Content returns the document's full text.
func (s *DocumentService) Content(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.FullText, nil
}

// List returns known documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if s.catalog == nil {
		return []domain.Document{}, nil
	}
	docs, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Original decrypts and returns the uploaded bytes.
func (s *DocumentService) Original(ctx context.Context, documentID string) ([]byte, error) {
	blob, err := s.docStore.LoadOriginal(ctx, documentID)
	if err != nil {
		return nil, err
	}
	data, err := s.cipher.Decrypt(blob)
	if err != nil {
		return nil, fmt.Errorf("decrypt upload %s: %w", documentID, err)
	}
	return data, nil
}

// SuggestQuestions proposes questions about a document.
func (s *DocumentService) SuggestQuestions(ctx context.Context, documentID string) ([]string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.suggest(ctx, doc.FullText), nil
}

// suggest asks the model for questions about the opening of the text.
// Any failure yields FallbackQuestions.
func (s *DocumentService) suggest(ctx context.Context, text string) []string {
	fallback := append([]string(nil), FallbackQuestions...)
	if s.llmService == nil || s.prompts == nil {
		return fallback
	}

	template, err := s.prompts.Load(driven.PromptSuggestQuestions)
	if err != nil {
		logger.Warn("Suggestion prompt unavailable: %v", err)
		return fallback
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: suggestSystemPrompt},
		{Role: driven.RoleUser, Content: fmt.Sprintf(template, truncateRunes(text, suggestContextChars))},
	}
	raw, err := callProvider(ctx, s.config.ProviderTimeout, "suggest questions",
		func(ctx context.Context) (string, error) {
			return s.llmService.Chat(ctx, messages, driven.ChatOptions{
				MaxTokens:   suggestMaxTokens,
				Temperature: suggestTemperature,
			})
		})
	if err != nil {
		logger.Warn("Question suggestion failed: %v", err)
		return fallback
	}

	questions := splitQuestions(raw)
	if len(questions) == 0 {
		return fallback
	}
	return questions
}

// splitQuestions takes up to suggestCount non-empty lines, stripping list markers.
func splitQuestions(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		q := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-* "))
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == suggestCount {
			break
		}
	}
	return out
}

// truncateRunes returns at most n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
