package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHuggingFace is the Hugging Face inference API.
	AIProviderHuggingFace AIProvider = "huggingface"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic,
		AIProviderHuggingFace, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && !p.IsLocal()
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
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
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHuggingFace:
		return "Hugging Face Inference (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
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

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the provider API key or token.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is the provider API key or token.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RAGSettings holds the thresholds of the guarded answering pipeline.
type RAGSettings struct {
	// SimilarityThreshold is the minimum best retrieval score (τ_sim).
	SimilarityThreshold float64

	// ConfidenceThreshold is the minimum combined confidence for a grounded answer (τ_conf).
	ConfidenceThreshold float64

	// TopK is the number of chunks retrieved per question.
	TopK int

	// MaxSources is the number of sources returned with an answer.
	MaxSources int

	// SuggestQuestions enables suggested questions after upload.
	SuggestQuestions bool
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	ChunkSize    int
	ChunkOverlap int
}

// ExtractionSettings bounds the text sent for structured extraction.
type ExtractionSettings struct {
	// MaxChars truncates the document text before prompting.
	MaxChars int

	// MaxTokens further truncates by token count. Zero disables it.
	MaxTokens int
}

// ProviderSettings controls how provider calls are bounded.
type ProviderSettings struct {
	// Timeout bounds every embedding or LLM call.
	Timeout time.Duration

	// RequestsPerSecond throttles provider calls. Zero means unlimited.
	RequestsPerSecond float64

	// Burst is the limiter burst size.
	Burst int

	// MaxRetries is the number of adapter-level retries on failure.
	MaxRetries int
}

// CryptoSettings configures encryption of stored originals.
type CryptoSettings struct {
	// Key is hex (64 chars) or base64 (32 bytes). Empty means ephemeral.
	Key string

	// Algorithm is "aes-256-gcm" or "chacha20-poly1305".
	Algorithm string
}

// StorageSettings locates on-disk state.
type StorageSettings struct {
	DataDir string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr        string
	MaxUploadMB int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	RAG        RAGSettings
	Chunking   ChunkingSettings
	Extraction ExtractionSettings
	Providers  ProviderSettings
	Crypto     CryptoSettings
	Storage    StorageSettings
	Server     ServerSettings
}

// Default pipeline constants.
const (
	DefaultSimilarityThreshold = 0.35
	DefaultConfidenceThreshold = 0.45
	DefaultTopK                = 5
	DefaultMaxSources          = 3
	DefaultChunkSize           = 1000
	DefaultChunkOverlap        = 200
	DefaultExtractionMaxChars  = 12000
	DefaultExtractionMaxTokens = 6000
	DefaultProviderTimeout     = 60 * time.Second
	DefaultCipherAlgorithm     = "aes-256-gcm"
	DefaultServerAddr          = ":8000"
	DefaultMaxUploadMB         = 20
)

// DefaultAppSettings returns settings with sensible defaults.
// Provider API keys are left empty; they come from config or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderHuggingFace,
			Model:    DefaultEmbeddingModels()[AIProviderHuggingFace],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		RAG: RAGSettings{
			SimilarityThreshold: DefaultSimilarityThreshold,
			ConfidenceThreshold: DefaultConfidenceThreshold,
			TopK:                DefaultTopK,
			MaxSources:          DefaultMaxSources,
			SuggestQuestions:    true,
		},
		Chunking: ChunkingSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Extraction: ExtractionSettings{
			MaxChars:  DefaultExtractionMaxChars,
			MaxTokens: DefaultExtractionMaxTokens,
		},
		Providers: ProviderSettings{
			Timeout: DefaultProviderTimeout,
			Burst:   1,
		},
		Crypto: CryptoSettings{
			Algorithm: DefaultCipherAlgorithm,
		},
		Server: ServerSettings{
			Addr:        DefaultServerAddr,
			MaxUploadMB: DefaultMaxUploadMB,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHuggingFace,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderHuggingFace,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHuggingFace: "sentence-transformers/all-MiniLM-L6-v2",
		AIProviderOllama:      "nomic-embed-text",
		AIProviderOpenAI:      "text-embedding-3-small",
		AIProviderGemini:      "text-embedding-004",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:      "llama3.2",
		AIProviderOpenAI:      "gpt-4o-mini",
		AIProviderAnthropic:   "claude-3-5-sonnet-latest",
		AIProviderHuggingFace: "meta-llama/Llama-3.1-8B-Instruct",
		AIProviderGemini:      "gemini-1.5-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"sentence-transformers/all-MiniLM-L6-v2": 384,
		"nomic-embed-text":                       768,
		"mxbai-embed-large":                      1024,
		"all-minilm":                             384,
		"text-embedding-3-small":                 1536,
		"text-embedding-3-large":                 3072,
		"text-embedding-ada-002":                 1536,
		"text-embedding-004":                     768,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so processors can be added without
// modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfig derives the ingestion pipeline from the chunking settings.
func (c ChunkingSettings) PipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.ChunkSize,
				"overlap":    c.ChunkOverlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return DefaultAppSettings().Chunking.PipelineConfig()
}
