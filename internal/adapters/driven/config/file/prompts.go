package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerSystem: `You are a precise, professional logistics document assistant.
Answer the user's question using ONLY the provided document context. Never use external knowledge.

Rules:
1. Keep answers short, specific and direct. Do not repeat the question.
2. Do not open with phrases like "Based on the document" or "The text mentions".
3. If the answer is not in the context, answer exactly: "The requested information is not available in the uploaded document."
4. If multiple values exist, list them concisely.
5. Quote the exact context text that supports your answer in source_text.

Respond with this JSON object and nothing else:
{
  "answer": "your answer",
  "confidence": 0.85,
  "source_text": "exact supporting text from the context"
}

confidence is a number between 0.0 and 1.0:
- 0.9-1.0: the answer is stated explicitly in the context
- 0.7-0.89: the answer is strongly supported by the context
- 0.5-0.69: the answer is partially supported and needs some inference
- below 0.5: the answer is weakly supported`,

	driven.PromptAnswerUser: `DOCUMENT CONTEXT:
%s

QUESTION: %s

Answer the question using ONLY the document context above.`,

	driven.PromptExtractionSystem: `You are a precise logistics document data extraction assistant.

Extract structured shipment data from the provided document text.

Return a JSON object with exactly these 11 fields:
{
  "shipment_id": "string or null",
  "shipper": "string or null",
  "consignee": "string or null",
  "pickup_datetime": "string or null",
  "delivery_datetime": "string or null",
  "equipment_type": "string or null",
  "mode": "string or null",
  "rate": "string or null",
  "currency": "string or null",
  "weight": "string or null",
  "carrier_name": "string or null"
}

Rules:
1. Extract ONLY from the provided text. Never invent data.
2. If a field is not found in the document, set it to null.
3. Keep dates and times in the format used by the document.
4. Put the number only in "rate" and the currency code in "currency".
5. Copy exact values rather than paraphrasing.
6. Return only the JSON object. No explanations and no markdown.

Also include a "confidence" field (0.0-1.0) for the overall extraction.`,

	driven.PromptExtractionUser: `DOCUMENT TEXT:
%s

Extract the structured shipment data as JSON.`,

	driven.PromptSuggestQuestions: `DOCUMENT CONTEXT:
%s

Generate 5 unique, short, specific questions that a user might ask about this logistics document.
The questions should be diverse (dates, parties, reference numbers, weights).
Do not number them. Provide 5 lines, one question per line.`,
}

// DefaultPrompt returns the embedded default for a prompt name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.docintel/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# docintel prompts

These templates drive the answering and extraction pipelines.

## Files

- ` + "`answer_system.txt`" + ` - Grounding rules and the JSON answer format
- ` + "`answer_user.txt`" + ` - Retrieved context (%s) followed by the question (%s)
- ` + "`extraction_system.txt`" + ` - The 11-field shipment record format
- ` + "`extraction_user.txt`" + ` - Document text (%s)
- ` + "`suggest_questions.txt`" + ` - Opening excerpt (%s) used to suggest questions

## Customisation

Edit any file to change model behaviour. Changes take effect on the next
command. Keep every %s placeholder, in order. The answer and extraction
system prompts must still ask for JSON, otherwise answers fall back to
the raw reply with a neutral confidence.
`
	return os.WriteFile(path, []byte(content), 0600)
}
