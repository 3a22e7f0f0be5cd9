package cli

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMaskOptional(t *testing.T) {
	assert.Equal(t, "", maskOptional(""))
	assert.Equal(t, "sk-1...cdef", maskOptional("sk-1234567890abcdef"))
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range settingsCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"show", "set", "validate", "embedding", "llm"}, names)
}

func TestSettingsShowCmd_MasksSecrets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Guardrails]")
	assert.Contains(t, out, "Similarity threshold: 0.35")
	assert.Contains(t, out, "Confidence threshold: 0.45")
	assert.Contains(t, out, "API Key: sk-t...cdef")
	assert.NotContains(t, out, "sk-test-1234567890abcdef")
	assert.Contains(t, out, "originals are unrecoverable after restart")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_ReportsInvalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testEnv.settings.validateErr = errors.New("LLM provider requires an API key")

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: LLM provider requires an API key")
}

func TestSettingsShowCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "--json", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "sk-t...cdef")
	assert.NotContains(t, out, "sk-test-1234567890abcdef")
}

func TestSettingsSetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "set", "rag.top_k", "7")
	require.NoError(t, err)
	assert.Equal(t, "7", testEnv.settings.set["rag.top_k"])
	assert.Contains(t, out, "rag.top_k = 7")

	out, err = execute(t, "settings", "set", "llm.api_key", "sk-secret-abcdefgh1234")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-secret-abcdefgh1234")

	_, err = execute(t, "settings", "set", "bogus", "1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = execute(t, "settings", "set", "rag.top_k")
	assert.Error(t, err)
}

func TestSettingsValidateCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { validatePing = false }()

	out, err := execute(t, "settings", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Settings are valid.")
	assert.NotContains(t, out, "Embedding provider...")

	out, err = execute(t, "settings", "validate", "--ping")
	require.NoError(t, err)
	assert.Contains(t, out, "Embedding provider... OK")
	assert.Contains(t, out, "LLM provider... OK")

	testEnv.settings.pingErr = domain.ErrEmbeddingUnavailable
	_, err = execute(t, "settings", "validate", "--ping")
	assert.ErrorIs(t, err, domain.ErrProvider)

	testEnv.settings.validateErr = domain.ErrInvalidConfig
	_, err = execute(t, "settings", "validate")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSettingsLLMCmd_Interactive(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	providers := domain.AllLLMProviders()
	choice := 0
	for i, p := range providers {
		if p == domain.AIProviderOllama {
			choice = i + 1
		}
	}
	require.NotZero(t, choice)

	rootCmd.SetIn(strings.NewReader(strconv.Itoa(choice) + "\nllama3.1\n"))
	out, err := execute(t, "settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, testEnv.settings.settings.LLM.Provider)
	assert.Equal(t, "llama3.1", testEnv.settings.settings.LLM.Model)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsCmd_NoService(t *testing.T) {
	SetSettingsService(nil)

	_, err := execute(t, "settings", "show")

	assert.ErrorContains(t, err, "settings service not configured")
}
