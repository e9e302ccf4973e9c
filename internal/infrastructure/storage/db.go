package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tourassist/backend/internal/infrastructure/config"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Connection pragmas: wait on locks instead of failing, WAL for concurrent readers
const dsnPragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

var schemaStatements = []struct {
	name string
	sql  string
}{
	{"tenants", `
	CREATE TABLE IF NOT EXISTS tenants (
		tenant_id TEXT PRIMARY KEY,
		api_key TEXT UNIQUE NOT NULL,
		created_at TEXT NOT NULL
	);`},
	{"documents", `
	CREATE TABLE IF NOT EXISTS documents (
		document_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(tenant_id, content_hash)
	);`},
	{"chunks", `
	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		text TEXT NOT NULL,
		vector_record_id TEXT NOT NULL,
		UNIQUE(document_id, chunk_index)
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_tenant ON chunks(tenant_id);`},
	{"embedding_cache", `
	CREATE TABLE IF NOT EXISTS embedding_cache (
		text_hash TEXT PRIMARY KEY,
		vector_json TEXT NOT NULL,
		dims INTEGER NOT NULL
	);`},
}

// OpenDB opens the sqlite database at path and creates the schema
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitSchema creates every table if missing
func InitSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
		}
	}
	return nil
}

// ProvideDB opens the configured database; the returned cleanup closes it
func ProvideDB(cfg *config.DatabaseConfig) (*sql.DB, func(), error) {
	if err := config.EnsureDataDirs(cfg); err != nil {
		return nil, nil, err
	}

	db, err := OpenDB(cfg.Path)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { db.Close() }, nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE or PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	// connections opened without extended result codes only carry the message
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
