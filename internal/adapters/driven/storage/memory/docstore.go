package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docintel/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.DocumentStore   = (*DocumentStore)(nil)
	_ driven.DocumentCatalog = (*Catalog)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Indexes are sealed flat indexes held by reference; nothing is written to disk.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	indexes   map[string]*flat.Index
	chunks    map[string][]string
	originals map[string][]byte
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		indexes:   make(map[string]*flat.Index),
		chunks:    make(map[string][]string),
		originals: make(map[string][]byte),
	}
}

// SaveIndex seals an index over vectors and stores it with the chunk texts.
func (s *DocumentStore) SaveIndex(_ context.Context, documentID string, vectors [][]float32, chunks []string) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrDimensionMismatch, len(vectors), len(chunks))
	}
	idx, err := flat.Build(vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[documentID] = idx
	s.chunks[documentID] = slices.Clone(chunks)
	return nil
}

// LoadIndex returns the stored index and a copy of the chunk texts.
func (s *DocumentStore) LoadIndex(_ context.Context, documentID string) (driven.VectorIndex, []string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[documentID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, documentID)
	}
	return idx, slices.Clone(s.chunks[documentID]), nil
}

// PutDocument caches document metadata.
func (s *DocumentStore) PutDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument returns cached metadata, rebuilding the full text from chunks
// when only the index was saved.
func (s *DocumentStore) GetDocument(_ context.Context, documentID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if doc, ok := s.documents[documentID]; ok {
		return &doc, nil
	}
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, documentID)
	}
	return &domain.Document{
		ID:         documentID,
		FullText:   strings.Join(chunks, "\n"),
		ChunkCount: len(chunks),
	}, nil
}

// Exists reports whether an index was saved for the document.
func (s *DocumentStore) Exists(_ context.Context, documentID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[documentID]
	return ok
}

// SaveOriginal stores the encrypted upload.
func (s *DocumentStore) SaveOriginal(_ context.Context, documentID string, format domain.Format, blob []byte) error {
	if !format.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originals[documentID] = slices.Clone(blob)
	return nil
}

// LoadOriginal returns the encrypted upload.
func (s *DocumentStore) LoadOriginal(_ context.Context, documentID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.originals[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: no stored upload for %s", domain.ErrDocumentNotFound, documentID)
	}
	return slices.Clone(blob), nil
}

// Catalog is an in-memory implementation of driven.DocumentCatalog.
type Catalog struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{docs: make(map[string]domain.Document)}
}

// Record stores metadata, dropping the full text.
func (c *Catalog) Record(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrValidation)
	}
	meta := *doc
	meta.FullText = ""
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.ID] = meta
	return nil
}

// Get returns metadata for a document.
func (c *Catalog) Get(_ context.Context, documentID string) (*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// List returns every document, newest first.
func (c *Catalog) List(_ context.Context) ([]domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]domain.Document, 0, len(c.docs))
	for _, d := range c.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}
