package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// vocabEmbedder embeds text as keyword counts over a fixed vocabulary, with a
// small constant component so no vector is zero.
type vocabEmbedder struct {
	vocab []string
	fixed map[string][]float32
	err   error

	mu    sync.Mutex
	calls int
}

func newVocabEmbedder(vocab ...string) *vocabEmbedder {
	return &vocabEmbedder{vocab: vocab, fixed: map[string][]float32{}}
}

func (e *vocabEmbedder) vector(text string) []float32 {
	if v, ok := e.fixed[text]; ok {
		return append([]float32(nil), v...)
	}
	lower := strings.ToLower(text)
	v := make([]float32, len(e.vocab)+1)
	for i, w := range e.vocab {
		v[i] = float32(strings.Count(lower, w))
	}
	v[len(e.vocab)] = 0.1
	return v
}

func (e *vocabEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.vector(text), nil
}

func (e *vocabEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *vocabEmbedder) Dimensions() int                { return len(e.vocab) + 1 }
func (e *vocabEmbedder) ModelName() string              { return "vocab" }
func (e *vocabEmbedder) Ping(ctx context.Context) error { return nil }
func (e *vocabEmbedder) Close() error                   { return nil }

func (e *vocabEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// scriptedLLM returns a canned reply and records the conversation.
type scriptedLLM struct {
	reply string
	err   error
	block bool

	mu       sync.Mutex
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (l *scriptedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.mu.Lock()
	l.calls++
	l.messages = messages
	l.opts = opts
	l.mu.Unlock()

	if l.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if l.err != nil {
		return "", l.err
	}
	return l.reply, nil
}

func (l *scriptedLLM) ModelName() string              { return "scripted" }
func (l *scriptedLLM) Ping(ctx context.Context) error { return nil }
func (l *scriptedLLM) Close() error                   { return nil }

func (l *scriptedLLM) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *scriptedLLM) lastMessages() []driven.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.messages
}

// wordTokenizer counts whitespace-separated words.
type wordTokenizer struct{}

func (wordTokenizer) Count(text string) int { return len(strings.Fields(text)) }

func (wordTokenizer) Truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}
