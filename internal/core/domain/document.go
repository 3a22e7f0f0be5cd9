package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format identifies the file format of an uploaded document.
type Format string

// Supported document formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

// SupportedFormats returns every format accepted at upload, in display order.
func SupportedFormats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatText}
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// IsValid reports whether the format is one of the supported formats.
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatDOCX, FormatText:
		return true
	default:
		return false
	}
}

// FormatFromFilename derives the document format from a filename extension.
// The comparison is case-insensitive.
func FormatFromFilename(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	f := Format(strings.TrimPrefix(ext, "."))
	if ext == "" || !f.IsValid() {
		return "", fmt.Errorf("%w: %q (allowed: .pdf, .docx, .txt)", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// Document represents an ingested document.
// It is created once on successful ingestion and never mutated.
type Document struct {
	// ID is the opaque identifier generated at ingestion.
	ID string `json:"id"`

	// Filename is the name the document was uploaded with.
	Filename string `json:"filename"`

	// Format is the detected file format.
	Format Format `json:"format"`

	// FullText is the normalised extracted text.
	FullText string `json:"full_text,omitempty"`

	// ChunkCount is the number of chunks indexed for the document.
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time `json:"created_at"`
}

// Chunk represents a retrievable unit within a document.
// Position is the index into the document's chunk sequence and is the
// reference search results resolve against.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the normalised vector for similarity search.
	Embedding []float32
}

// UploadResult is returned by a successful ingestion.
type UploadResult struct {
	DocumentID         string   `json:"document_id"`
	Filename           string   `json:"filename"`
	ChunkCount         int      `json:"chunk_count"`
	SuggestedQuestions []string `json:"suggested_questions,omitempty"`
}
