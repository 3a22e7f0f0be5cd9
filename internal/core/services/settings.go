package services

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keySimThreshold   = "rag.similarity_threshold"
	keyConfThreshold  = "rag.confidence_threshold"
	keyTopK           = "rag.top_k"
	keyMaxSources     = "rag.max_sources"
	keySuggest        = "rag.suggest_questions"
	keyChunkSize      = "chunking.chunk_size"
	keyChunkOverlap   = "chunking.chunk_overlap"
	keyExtractChars   = "extraction.max_chars"
	keyExtractTokens  = "extraction.max_tokens"
	keyTimeoutSeconds = "providers.timeout_seconds"
	keyRPS            = "providers.requests_per_second"
	keyBurst          = "providers.burst"
	keyMaxRetries     = "providers.max_retries"
	keyCryptoKey      = "crypto.key"
	keyCryptoAlg      = "crypto.algorithm"
	keyDataDir        = "storage.data_dir"
	keyServerAddr     = "server.addr"
	keyMaxUploadMB    = "server.max_upload_mb"
)

// valueKind is the type a config key holds.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
)

// settingKinds lists every key accepted by Set.
var settingKinds = map[string]valueKind{
	keyEmbedProvider:  kindString,
	keyEmbedModel:     kindString,
	keyEmbedBaseURL:   kindString,
	keyEmbedAPIKey:    kindString,
	keyLLMProvider:    kindString,
	keyLLMModel:       kindString,
	keyLLMBaseURL:     kindString,
	keyLLMAPIKey:      kindString,
	keySimThreshold:   kindFloat,
	keyConfThreshold:  kindFloat,
	keyTopK:           kindInt,
	keyMaxSources:     kindInt,
	keySuggest:        kindBool,
	keyChunkSize:      kindInt,
	keyChunkOverlap:   kindInt,
	keyExtractChars:   kindInt,
	keyExtractTokens:  kindInt,
	keyTimeoutSeconds: kindInt,
	keyRPS:            kindFloat,
	keyBurst:          kindInt,
	keyMaxRetries:     kindInt,
	keyCryptoKey:      kindString,
	keyCryptoAlg:      kindString,
	keyDataDir:        kindString,
	keyServerAddr:     kindString,
	keyMaxUploadMB:    kindInt,
}

// providerKeyEnv maps a provider to the environment variable holding its key.
//
//nolint:gosec // G101: environment variable names, not credentials.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:      "OPENAI_API_KEY",
	domain.AIProviderAnthropic:   "ANTHROPIC_API_KEY",
	domain.AIProviderHuggingFace: "HF_API_TOKEN",
	domain.AIProviderGemini:      "GEMINI_API_KEY",
}

// cryptoKeyEnv is the legacy variable for the encryption key.
const cryptoKeyEnv = "AES_SECRET_KEY"

// EnvName returns the DOCINTEL_* variable that overrides a config key.
func EnvName(key string) string {
	return "DOCINTEL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SettingKeys returns every configurable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
// Values resolve from the environment first, then the config store, then defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// Get retrieves current application settings, with environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:  s.getString(keyEmbedBaseURL, ""),
			APIKey:   s.getString(keyEmbedAPIKey, ""),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:  s.getString(keyLLMBaseURL, ""),
			APIKey:   s.getString(keyLLMAPIKey, ""),
		},
		RAG: domain.RAGSettings{
			SimilarityThreshold: s.getFloat(keySimThreshold, d.RAG.SimilarityThreshold),
			ConfidenceThreshold: s.getFloat(keyConfThreshold, d.RAG.ConfidenceThreshold),
			TopK:                s.getInt(keyTopK, d.RAG.TopK),
			MaxSources:          s.getInt(keyMaxSources, d.RAG.MaxSources),
			SuggestQuestions:    s.getBool(keySuggest, d.RAG.SuggestQuestions),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize:    s.getInt(keyChunkSize, d.Chunking.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, d.Chunking.ChunkOverlap),
		},
		Extraction: domain.ExtractionSettings{
			MaxChars:  s.getInt(keyExtractChars, d.Extraction.MaxChars),
			MaxTokens: s.getInt(keyExtractTokens, d.Extraction.MaxTokens),
		},
		Providers: domain.ProviderSettings{
			Timeout:           time.Duration(s.getInt(keyTimeoutSeconds, int(d.Providers.Timeout.Seconds()))) * time.Second,
			RequestsPerSecond: s.getFloat(keyRPS, d.Providers.RequestsPerSecond),
			Burst:             s.getInt(keyBurst, d.Providers.Burst),
			MaxRetries:        s.getInt(keyMaxRetries, d.Providers.MaxRetries),
		},
		Crypto: domain.CryptoSettings{
			Key:       s.getString(keyCryptoKey, ""),
			Algorithm: s.getString(keyCryptoAlg, d.Crypto.Algorithm),
		},
		Storage: domain.StorageSettings{
			DataDir: s.getString(keyDataDir, d.Storage.DataDir),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(keyServerAddr, d.Server.Addr),
			MaxUploadMB: s.getInt(keyMaxUploadMB, d.Server.MaxUploadMB),
		},
	}

	// Models default per provider, not globally.
	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.providerKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.providerKey(settings.LLM.Provider)
	}
	if settings.Crypto.Key == "" {
		if v, ok := s.lookupEnv(cryptoKeyEnv); ok {
			settings.Crypto.Key = strings.TrimSpace(v)
		}
	}

	return settings, nil
}

// Save persists application settings.
// Secrets are written only when set so environment-supplied keys stay out of the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keySimThreshold, settings.RAG.SimilarityThreshold},
		{keyConfThreshold, settings.RAG.ConfidenceThreshold},
		{keyTopK, settings.RAG.TopK},
		{keyMaxSources, settings.RAG.MaxSources},
		{keySuggest, settings.RAG.SuggestQuestions},
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyChunkOverlap, settings.Chunking.ChunkOverlap},
		{keyExtractChars, settings.Extraction.MaxChars},
		{keyExtractTokens, settings.Extraction.MaxTokens},
		{keyTimeoutSeconds, int(settings.Providers.Timeout / time.Second)},
		{keyRPS, settings.Providers.RequestsPerSecond},
		{keyBurst, settings.Providers.Burst},
		{keyMaxRetries, settings.Providers.MaxRetries},
		{keyCryptoAlg, settings.Crypto.Algorithm},
		{keyDataDir, settings.Storage.DataDir},
		{keyServerAddr, settings.Server.Addr},
		{keyMaxUploadMB, settings.Server.MaxUploadMB},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key, value, env string
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, providerKeyEnv[settings.Embedding.Provider]},
		{keyLLMAPIKey, settings.LLM.APIKey, providerKeyEnv[settings.LLM.Provider]},
		{keyCryptoKey, settings.Crypto.Key, cryptoKeyEnv},
	}
	for _, sec := range secrets {
		if sec.value == "" || s.fromEnv(sec.value, EnvName(sec.key), sec.env) {
			continue
		}
		if err := s.configStore.Set(sec.key, sec.value); err != nil {
			return fmt.Errorf("save %s: %w", sec.key, err)
		}
	}

	return nil
}

// fromEnv reports whether value was supplied by one of the named variables.
func (s *SettingsService) fromEnv(value string, names ...string) bool {
	for _, name := range names {
		if name == "" {
			continue
		}
		if v, ok := s.lookupEnv(name); ok && strings.TrimSpace(v) == value {
			return true
		}
	}
	return false
}

// Set stores a single raw key such as "rag.top_k", converting the value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrValidation, key)
	}

	value = strings.TrimSpace(value)
	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) {
			return fmt.Errorf("%w: %s must be a number", domain.ErrValidation, key)
		}
		typed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrValidation, key)
		}
		typed = b
	default:
		if (key == keyEmbedProvider || key == keyLLMProvider) && !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrValidation, value)
		}
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrValidation, provider)
	}
	if !supportsEmbeddings(provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrValidation, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = ""
	settings.Embedding.APIKey = apiKey

	// Drop any key stored for the previous provider.
	if err := s.configStore.Set(keyEmbedAPIKey, ""); err != nil {
		return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
	}
	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrValidation, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = ""
	settings.LLM.APIKey = apiKey

	// Drop any key stored for the previous provider.
	if err := s.configStore.Set(keyLLMAPIKey, ""); err != nil {
		return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
	}
	return s.Save(settings)
}

// Validate checks that settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings)
}

// ValidateSettings checks ranges and provider set-up without network calls.
func ValidateSettings(settings *domain.AppSettings) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !supportsEmbeddings(settings.Embedding.Provider) {
		add("embedding provider %q does not support embeddings", settings.Embedding.Provider)
	} else if !settings.Embedding.IsConfigured() {
		add("embedding provider %s needs an API key (set %s or %s)",
			settings.Embedding.Provider, EnvName(keyEmbedAPIKey), providerKeyEnv[settings.Embedding.Provider])
	}
	if !settings.LLM.IsConfigured() {
		add("llm provider %s is not configured (set %s or %s)",
			settings.LLM.Provider, EnvName(keyLLMAPIKey), providerKeyEnv[settings.LLM.Provider])
	}

	if t := settings.RAG.SimilarityThreshold; t < 0 || t > 1 {
		add("%s must be within [0, 1], got %v", keySimThreshold, t)
	}
	if t := settings.RAG.ConfidenceThreshold; t < 0 || t > 1 {
		add("%s must be within [0, 1], got %v", keyConfThreshold, t)
	}
	if settings.RAG.TopK < 1 {
		add("%s must be at least 1", keyTopK)
	}
	if settings.RAG.MaxSources < 1 {
		add("%s must be at least 1", keyMaxSources)
	}
	if settings.Chunking.ChunkSize < 1 {
		add("%s must be at least 1", keyChunkSize)
	}
	if settings.Chunking.ChunkOverlap < 0 {
		add("%s must not be negative", keyChunkOverlap)
	}
	if settings.Extraction.MaxChars < 1 {
		add("%s must be at least 1", keyExtractChars)
	}
	if settings.Providers.Timeout <= 0 {
		add("%s must be positive", keyTimeoutSeconds)
	}
	if settings.Providers.RequestsPerSecond < 0 {
		add("%s must not be negative", keyRPS)
	}
	if settings.Providers.MaxRetries < 0 {
		add("%s must not be negative", keyMaxRetries)
	}
	switch settings.Crypto.Algorithm {
	case "aes-256-gcm", "chacha20-poly1305":
	default:
		add("%s must be aes-256-gcm or chacha20-poly1305, got %q", keyCryptoAlg, settings.Crypto.Algorithm)
	}
	if settings.Server.MaxUploadMB < 1 {
		add("%s must be at least 1", keyMaxUploadMB)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func supportsEmbeddings(p domain.AIProvider) bool {
	for _, candidate := range domain.AllEmbeddingProviders() {
		if candidate == p {
			return true
		}
	}
	return false
}

// Helper methods for reading config with defaults.

// raw returns the environment override for key, or the stored value.
func (s *SettingsService) raw(key string) (any, bool) {
	if v, ok := s.lookupEnv(EnvName(key)); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	return s.configStore.Get(key)
}

func (s *SettingsService) providerKey(p domain.AIProvider) string {
	name, ok := providerKeyEnv[p]
	if !ok {
		return ""
	}
	v, _ := s.lookupEnv(name)
	return strings.TrimSpace(v)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	str := strings.TrimSpace(fmt.Sprint(val))
	if str == "" {
		return defaultVal
	}
	return str
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	val, ok := s.raw(key)
	if !ok {
		return defaultVal
	}
	switch v := val.(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
