// Package pdf extracts page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageReader returns the plain text of each page in order.
type PageReader func(data []byte) ([]string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	readPages PageReader
}

// New creates a new PDF normaliser backed by ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{readPages: readPages}
}

// NewWithReader creates a PDF normaliser with a custom page reader.
func NewWithReader(r PageReader) *Normaliser {
	return &Normaliser{readPages: r}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Normalise returns the text of every page that has any, joined by a blank line.
func (n *Normaliser) Normalise(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pages, err := n.readPages(data)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			parts = append(parts, page)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// readPages extracts text page by page. The parser panics on some malformed
// inputs, so panics are converted to errors.
func readPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
