package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docintel/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

const (
	vectorDir  = "vector_store"
	uploadDir  = "uploads"
	indexFile  = "index.bin"
	chunksFile = "chunks.json"
	sealedExt  = ".enc"
)

// DocumentStore persists document indexes and uploads under a data directory
// and keeps a metadata cache in front of them.
type DocumentStore struct {
	root    string
	catalog driven.DocumentCatalog

	mu    sync.RWMutex
	cache map[string]domain.Document
}

// Option configures a DocumentStore.
type Option func(*DocumentStore)

// WithCatalog attaches a catalog used to fill in filename and format when a
// document is rebuilt from disk after a restart.
func WithCatalog(c driven.DocumentCatalog) Option {
	return func(s *DocumentStore) {
		s.catalog = c
	}
}

// New creates a document store rooted at dataDir, creating it if needed.
func New(dataDir string, opts ...Option) (*DocumentStore, error) {
	for _, dir := range []string{filepath.Join(dataDir, vectorDir), filepath.Join(dataDir, uploadDir)} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", domain.ErrStorage, dir, err)
		}
	}

	s := &DocumentStore{
		root:  dataDir,
		cache: make(map[string]domain.Document),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the data directory.
func (s *DocumentStore) Root() string {
	return s.root
}

// SaveIndex seals an index over vectors and writes it alongside the chunk texts.
func (s *DocumentStore) SaveIndex(ctx context.Context, documentID string, vectors [][]float32, chunks []string) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrDimensionMismatch, len(vectors), len(chunks))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	idx, err := flat.Build(vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	dir, err := s.documentDir(documentID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: create index directory: %w", domain.ErrStorage, err)
	}

	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("%w: encode chunks: %w", domain.ErrStorage, err)
	}
	if err := writeAtomic(filepath.Join(dir, chunksFile), data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	if err := idx.SaveFile(filepath.Join(dir, indexFile)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	logger.Debug("saved index for %s: %d vectors, dimension %d", documentID, idx.Len(), idx.Dimension())
	return nil
}

// LoadIndex opens the sealed index and chunk texts for a document.
func (s *DocumentStore) LoadIndex(_ context.Context, documentID string) (driven.VectorIndex, []string, error) {
	dir, err := s.documentDir(documentID)
	if err != nil {
		return nil, nil, err
	}

	chunks, err := readChunks(filepath.Join(dir, chunksFile))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexNotFound, documentID, err)
	}

	idx, err := flat.LoadFile(filepath.Join(dir, indexFile))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexNotFound, documentID, err)
	}
	if idx.Len() != len(chunks) {
		return nil, nil, fmt.Errorf("%w: %s: %d vectors for %d chunks",
			domain.ErrIndexNotFound, documentID, idx.Len(), len(chunks))
	}
	return idx, chunks, nil
}

// PutDocument caches document metadata.
func (s *DocumentStore) PutDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[doc.ID] = *doc
	return nil
}

// GetDocument returns cached metadata or rebuilds it from the persisted chunks.
// Rebuilt full text joins chunks with a single newline, so overlapping
// regions appear twice.
func (s *DocumentStore) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	s.mu.RLock()
	doc, ok := s.cache[documentID]
	s.mu.RUnlock()
	if ok {
		return &doc, nil
	}

	dir, err := s.documentDir(documentID)
	if err != nil {
		return nil, err
	}
	chunks, err := readChunks(filepath.Join(dir, chunksFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, documentID)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexNotFound, documentID, err)
	}

	doc = domain.Document{
		ID:         documentID,
		FullText:   strings.Join(chunks, "\n"),
		ChunkCount: len(chunks),
	}
	if s.catalog != nil {
		if meta, err := s.catalog.Get(ctx, documentID); err == nil {
			doc.Filename = meta.Filename
			doc.Format = meta.Format
			doc.CreatedAt = meta.CreatedAt
		} else if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("catalog lookup for %s: %v", documentID, err)
		}
	}

	s.mu.Lock()
	if cached, ok := s.cache[documentID]; ok {
		doc = cached
	} else {
		s.cache[documentID] = doc
	}
	s.mu.Unlock()

	logger.Debug("rebuilt document %s from %d chunks", documentID, len(chunks))
	return &doc, nil
}

// Exists reports whether both the index and chunk files are present.
func (s *DocumentStore) Exists(_ context.Context, documentID string) bool {
	dir, err := s.documentDir(documentID)
	if err != nil {
		return false
	}
	for _, name := range []string{indexFile, chunksFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// SaveOriginal writes the encrypted upload to uploads/<id><ext>.enc.
func (s *DocumentStore) SaveOriginal(_ context.Context, documentID string, format domain.Format, blob []byte) error {
	if err := validID(documentID); err != nil {
		return err
	}
	if !format.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	path := filepath.Join(s.root, uploadDir, documentID+format.Extension()+sealedExt)
	if err := writeAtomic(path, blob); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// LoadOriginal returns the encrypted upload for a document.
func (s *DocumentStore) LoadOriginal(_ context.Context, documentID string) ([]byte, error) {
	if err := validID(documentID); err != nil {
		return nil, err
	}
	for _, f := range domain.SupportedFormats() {
		data, err := os.ReadFile(filepath.Join(s.root, uploadDir, documentID+f.Extension()+sealedExt))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: read upload: %w", domain.ErrStorage, err)
		}
	}
	return nil, fmt.Errorf("%w: no stored upload for %s", domain.ErrDocumentNotFound, documentID)
}

// documentDir resolves the index directory for an ID.
func (s *DocumentStore) documentDir(documentID string) (string, error) {
	if err := validID(documentID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, vectorDir, documentID), nil
}

// validID rejects IDs that could escape the data directory.
func validID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", domain.ErrDocumentNotFound, id)
	}
	return nil
}

func readChunks(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var chunks []string
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	return chunks, nil
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
