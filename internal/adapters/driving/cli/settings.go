package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, guardrail thresholds and storage options.

Settings are stored in ~/.docintel/config.toml. Environment variables such as
OPENAI_API_KEY and AES_SECRET_KEY override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a setting by its dotted key, for example:

  docintel settings set rag.similarity_threshold 0.4
  docintel settings set llm.provider anthropic
  docintel settings set server.addr :9000`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate settings",
	Long:  `Checks the settings and, with --ping, contacts the configured providers.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Interactively configure the provider used to embed document chunks and questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively configure the provider used for answers, extraction and suggested questions.`,
	RunE:  runSettingsLLM,
}

var validatePing bool

func init() {
	settingsValidateCmd.Flags().BoolVar(&validatePing, "ping", false, "contact the configured providers")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if jsonOutput {
		masked := *settings
		masked.Embedding.APIKey = maskOptional(masked.Embedding.APIKey)
		masked.LLM.APIKey = maskOptional(masked.LLM.APIKey)
		masked.Crypto.Key = maskOptional(masked.Crypto.Key)
		return printJSON(cmd, masked)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	cmd.Println("[Guardrails]")
	cmd.Printf("  Similarity threshold: %.2f\n", settings.RAG.SimilarityThreshold)
	cmd.Printf("  Confidence threshold: %.2f\n", settings.RAG.ConfidenceThreshold)
	cmd.Printf("  Top K: %d\n", settings.RAG.TopK)
	cmd.Printf("  Max sources: %d\n", settings.RAG.MaxSources)
	cmd.Printf("  Suggested questions: %t\n", settings.RAG.SuggestQuestions)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk size: %d\n", settings.Chunking.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.ChunkOverlap)
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Max characters: %d\n", settings.Extraction.MaxChars)
	cmd.Printf("  Max tokens: %d\n", settings.Extraction.MaxTokens)
	cmd.Println()

	cmd.Println("[Providers]")
	cmd.Printf("  Timeout: %s\n", settings.Providers.Timeout)
	if settings.Providers.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f/s (burst %d)\n", settings.Providers.RequestsPerSecond, settings.Providers.Burst)
	} else {
		cmd.Printf("  Rate limit: unlimited\n")
	}
	cmd.Printf("  Max retries: %d\n", settings.Providers.MaxRetries)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data directory: %s\n", settings.Storage.DataDir)
	cmd.Printf("  Cipher: %s\n", settings.Crypto.Algorithm)
	if settings.Crypto.Key != "" {
		cmd.Printf("  Key: %s\n", maskAPIKey(settings.Crypto.Key))
	} else {
		cmd.Printf("  Key: (not set, originals are unrecoverable after restart)\n")
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Max upload: %d MB\n", settings.Server.MaxUploadMB)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docintel settings embedding' or 'docintel settings llm' to fix provider configuration.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" || provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.HasSuffix(key, "api_key") || key == "crypto.key" {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cmd.Println("Settings are valid.")

	if !validatePing {
		return nil
	}

	cmd.Print("Embedding provider... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("embedding provider: %w", err)
	}
	cmd.Println("OK")

	cmd.Print("LLM provider... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("LLM provider: %w", err)
	}
	cmd.Println("OK")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

// maskOptional masks a secret but keeps an empty value empty.
func maskOptional(key string) string {
	if key == "" {
		return ""
	}
	return maskAPIKey(key)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
