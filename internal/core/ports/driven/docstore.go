package driven

import (
	"context"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// DocumentStore owns per-document persisted state: the sealed vector index,
// the parallel chunk text sequence, and the encrypted original upload.
// It also keeps a concurrency-safe metadata cache.
type DocumentStore interface {
	// SaveIndex builds and seals an index over vectors and persists it with
	// the chunk texts. len(vectors) must equal len(chunks).
	SaveIndex(ctx context.Context, documentID string, vectors [][]float32, chunks []string) error

	// LoadIndex opens a document's index and chunk texts.
	// Returns domain.ErrIndexNotFound when either is missing or corrupt.
	LoadIndex(ctx context.Context, documentID string) (VectorIndex, []string, error)

	// PutDocument caches document metadata.
	PutDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument returns cached metadata, reconstructing it from the
	// persisted chunks on a cache miss.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)

	// Exists reports whether the document's index and chunks are present.
	Exists(ctx context.Context, documentID string) bool

	// SaveOriginal stores the encrypted original upload.
	SaveOriginal(ctx context.Context, documentID string, format domain.Format, blob []byte) error

	// LoadOriginal returns the encrypted original upload.
	LoadOriginal(ctx context.Context, documentID string) ([]byte, error)
}

// DocumentCatalog records document metadata durably.
type DocumentCatalog interface {
	// Record stores metadata for an ingested document.
	Record(ctx context.Context, doc *domain.Document) error

	// Get returns metadata without the full text.
	// Returns domain.ErrNotFound if the document is unknown.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]domain.Document, error)
}
