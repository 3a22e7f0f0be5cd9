package driving

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// DocumentService ingests documents and exposes their metadata.
type DocumentService interface {
	// Upload validates, encrypts, extracts, chunks, embeds and indexes a document.
	// Unsupported extensions and empty payloads are rejected before any processing.
	Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error)

	// Get returns document metadata including the full text.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Content returns the document's full text.
	Content(ctx context.Context, documentID string) (string, error)

	// List returns known documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Original decrypts and returns the uploaded bytes.
	Original(ctx context.Context, documentID string) ([]byte, error)

	// SuggestQuestions proposes questions about a document.
	// Never fails on provider errors; a fixed list is returned instead.
	SuggestQuestions(ctx context.Context, documentID string) ([]string, error)
}
