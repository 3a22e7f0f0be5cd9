// Package sqlite provides the SQLite document catalog.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. The catalog records the metadata of every
// ingested document (id, filename, format, chunk count, creation time) so listings
// survive restarts and documents rebuilt from their chunks regain their filename.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database lives at <data_dir>/catalog.db (by default ~/.docintel/data/catalog.db).
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
