package driven

// Tokenizer counts and truncates text by model tokens.
type Tokenizer interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Truncate returns the longest prefix of text within maxTokens tokens.
	Truncate(text string, maxTokens int) string
}
