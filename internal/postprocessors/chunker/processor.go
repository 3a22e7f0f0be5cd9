// Package chunker provides a recursive, boundary-aware text chunking processor.
//
// Text is split on the first separator in the preference list that occurs in
// it (paragraph, line, sentence, word, then single characters). Pieces that
// are still too long are split again with the remaining separators. Adjacent
// small pieces are then merged into windows of at most chunkSize characters,
// carrying up to overlap characters of trailing pieces into the next window.
// Lengths are measured in runes.
package chunker

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order. The empty separator cuts between
// characters and is always the last resort.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator preference list.
// The empty separator is appended if missing so chunks never exceed the size.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) == 0 {
			return
		}
		p.separators = slices.Clone(separators)
		if !slices.Contains(p.separators, "") {
			p.separators = append(p.separators, "")
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document text into chunks.
// Input chunks are ignored; this processor creates new chunks from document text.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := p.Split(doc.FullText)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    text,
			Position:   i,
		}
	}
	return chunks, nil
}

// Split returns the chunk texts for text. Whitespace-only input yields none.
func (p *Processor) Split(text string) []string {
	var out []string
	for _, chunk := range p.split(text, p.separators) {
		if chunk = strings.TrimSpace(chunk); chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

func (p *Processor) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var next []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			next = separators[i+1:]
			break
		}
	}

	var final, pending []string
	for _, piece := range splitKeep(text, separator) {
		if utf8.RuneCountInString(piece) < p.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, p.merge(pending)...)
			pending = nil
		}
		if len(next) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, p.split(piece, next)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, p.merge(pending)...)
	}
	return final
}

// merge packs pieces shorter than chunkSize into windows of at most chunkSize,
// seeding each window with up to overlap characters from the previous one.
func (p *Processor) merge(pieces []string) []string {
	var windows, current []string
	total := 0

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > p.chunkSize && len(current) > 0 {
			if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
				windows = append(windows, w)
			}
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= utf8.RuneCountInString(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if w := strings.TrimSpace(strings.Join(current, "")); w != "" {
		windows = append(windows, w)
	}
	return windows
}

// splitKeep splits text on sep, keeping sep at the start of each following
// piece. Empty pieces are dropped. An empty sep splits into characters.
func splitKeep(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
