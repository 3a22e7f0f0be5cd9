package normalisers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/normalisers/docx"
	"github.com/custodia-labs/docintel/internal/normalisers/pdf"
	"github.com/custodia-labs/docintel/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps formats to normalisers.
type Registry struct {
	mu          sync.RWMutex
	normalisers map[domain.Format]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{normalisers: make(map[domain.Format]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry with the PDF, DOCX and plain text normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
	return r
}

// Register adds n for each format it handles, replacing any previous entry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range n.Formats() {
		r.normalisers[f] = n
	}
}

// Get returns the normaliser for format, or nil.
func (r *Registry) Get(format domain.Format) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.normalisers[format]
}

// Normalise extracts text with the registered normaliser and folds line endings.
func (r *Registry) Normalise(ctx context.Context, format domain.Format, data []byte) (string, error) {
	n := r.Get(format)
	if n == nil {
		return "", fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedFormat, format)
	}
	text, err := n.Normalise(ctx, data)
	if err != nil {
		return "", fmt.Errorf("normalise %s: %w", format, err)
	}
	return Clean(text), nil
}

// SupportedFormats lists registered formats in canonical order.
func (r *Registry) SupportedFormats() []domain.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Format
	for _, f := range domain.SupportedFormats() {
		if _, ok := r.normalisers[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Clean folds CRLF and CR to LF, replaces invalid UTF-8 and NUL bytes, and trims.
func Clean(text string) string {
	text = strings.ToValidUTF8(text, "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
