// Package plaintext extracts text from .txt uploads.
package plaintext

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Formats returns the formats this normaliser handles.
func (n *Normaliser) Formats() []domain.Format {
	return []domain.Format{domain.FormatText}
}

// Normalise decodes the bytes as UTF-8. Invalid sequences are replaced
// rather than rejected, and a leading byte order mark is dropped.
func (n *Normaliser) Normalise(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
