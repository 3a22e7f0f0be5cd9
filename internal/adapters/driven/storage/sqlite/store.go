package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentCatalog = (*Store)(nil)

// DatabaseFile is the catalog file name inside the data directory.
const DatabaseFile = "catalog.db"

// Store is a SQLite-backed document catalog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docintel/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docintel", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL lets the HTTP server read listings while an upload is being recorded
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_documents.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// Record stores or replaces the metadata for a document.
func (s *Store) Record(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrValidation)
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, format, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			format = excluded.format,
			chunk_count = excluded.chunk_count
	`, doc.ID, doc.Filename, string(doc.Format), doc.ChunkCount, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("%w: recording document: %w", domain.ErrStorage, err)
	}
	return nil
}

// Get retrieves document metadata by ID.
func (s *Store) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, format, chunk_count, created_at
		FROM documents WHERE id = ?
	`, documentID)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanning document: %w", domain.ErrStorage, err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, format, chunk_count, created_at
		FROM documents ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: listing documents: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning document: %w", domain.ErrStorage, err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing documents: %w", domain.ErrStorage, err)
	}
	return docs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var (
		doc       domain.Document
		format    string
		createdAt sql.NullTime
	)
	if err := row.Scan(&doc.ID, &doc.Filename, &format, &doc.ChunkCount, &createdAt); err != nil {
		return nil, err
	}
	doc.Format = domain.Format(format)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	return &doc, nil
}
