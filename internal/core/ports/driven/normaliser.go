package driven

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// Normaliser extracts plain text from the bytes of a known format.
type Normaliser interface {
	// Formats returns the document formats this normaliser handles.
	Formats() []domain.Format

	// Normalise returns the extracted text with line endings folded to LF.
	Normalise(ctx context.Context, data []byte) (string, error)
}

// NormaliserRegistry selects the normaliser for a format.
type NormaliserRegistry interface {
	// Register adds a normaliser for each of its formats.
	Register(n Normaliser)

	// Get returns the normaliser for a format, or nil.
	Get(format domain.Format) Normaliser

	// Normalise extracts text using the registered normaliser.
	// Returns domain.ErrUnsupportedFormat when none is registered.
	Normalise(ctx context.Context, format domain.Format, data []byte) (string, error)

	// SupportedFormats lists formats with a registered normaliser.
	SupportedFormats() []domain.Format
}
