// Package tokenizer counts and truncates text by model tokens.
//
// The cl100k_base BPE from tiktoken is used when it can be loaded. When it
// cannot (for example, no network access to fetch the ranks on first use)
// the tokenizer falls back to an estimate of four characters per token.
package tokenizer

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is the BPE used for token budgets.
const DefaultEncoding = "cl100k_base"

// CharsPerToken is the estimate used without a BPE.
const CharsPerToken = 4

// Encoder is the subset of a BPE encoding the tokenizer needs.
type Encoder interface {
	Encode(text string, allowedSpecial, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// LoadFunc returns an Encoder, or an error when none is available.
type LoadFunc func() (Encoder, error)

// Tokenizer resolves its encoder lazily on first use.
type Tokenizer struct {
	load LoadFunc
	once sync.Once
	enc  Encoder
}

// New creates a tokenizer backed by tiktoken's cl100k_base encoding.
func New() *Tokenizer {
	return NewWithLoader(func() (Encoder, error) {
		return tiktoken.GetEncoding(DefaultEncoding)
	})
}

// NewWithLoader creates a tokenizer with a custom encoder loader.
// A nil loader always uses the character estimate.
func NewWithLoader(load LoadFunc) *Tokenizer {
	return &Tokenizer{load: load}
}

func (t *Tokenizer) encoder() Encoder {
	t.once.Do(func() {
		if t.load == nil {
			return
		}
		enc, err := t.load()
		if err != nil {
			logger.Warn("tokenizer: %s unavailable, estimating %d chars per token: %v",
				DefaultEncoding, CharsPerToken, err)
			return
		}
		t.enc = enc
	})
	return t.enc
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := t.encoder(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	n := utf8.RuneCountInString(text)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// Truncate returns the longest prefix of text within maxTokens tokens.
// A non-positive budget yields the empty string.
func (t *Tokenizer) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if enc := t.encoder(); enc != nil {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text
		}
		// A token boundary can split a multi-byte rune.
		return strings.ToValidUTF8(enc.Decode(tokens[:maxTokens]), "")
	}

	limit := maxTokens * CharsPerToken
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
