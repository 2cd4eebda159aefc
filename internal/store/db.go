// Package store implements the cache store: the embedded relational
// index backing the library — release/track rows, their join tables, the
// character-tokenized rules_engine_fts virtual table, and the destructive
// single-hash migration.
//
// Uses modernc.org/sqlite, a cgo-free driver, and internal/db.WithTx to
// run each mutation inside a transaction with rollback on error.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/azuline/rose-go/internal/db"
	"github.com/azuline/rose-go/internal/roseerr"
)

// Store wraps the cache database handle plus the directories its callers
// need (LocksDir for the writer-serialization locks of §4.3).
type Store struct {
	DB       *sql.DB
	LocksDir string
}

// Open opens (creating and migrating if necessary) the cache database at
// <cacheDir>/cache.db. If the packaged schema hash differs from the one
// recorded in the existing database, the database file is deleted and
// recreated — the store is a derived index, so this is safe.
func Open(cacheDir string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, roseerr.Unexpected(err)
	}
	locksDir := filepath.Join(cacheDir, "locks")
	if err := os.MkdirAll(locksDir, 0o755); err != nil {
		return nil, roseerr.Unexpected(err)
	}

	path := filepath.Join(cacheDir, "cache.db")
	if stale, err := hashIsStale(path); err != nil {
		return nil, err
	} else if stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, roseerr.Unexpected(err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, roseerr.Unexpected(err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schemaDDL); err != nil {
		conn.Close()
		return nil, roseerr.Unexpected(fmt.Errorf("apply schema: %w", err))
	}
	if err := recordSchemaHash(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &Store{DB: conn, LocksDir: locksDir}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

// WithTx runs fn inside a transaction, per internal/db's convention.
func (s *Store) WithTx(fn func(tx *sql.Tx) error) error {
	return db.WithTx(s.DB, fn)
}

func hashIsStale(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return true, nil
	}
	defer conn.Close()

	var stored string
	row := conn.QueryRow("SELECT hash FROM schema_hash LIMIT 1")
	if err := row.Scan(&stored); err != nil {
		return true, nil
	}
	return stored != schemaHash(), nil
}

func recordSchemaHash(conn *sql.DB) error {
	var count int
	if err := conn.QueryRow("SELECT COUNT(*) FROM schema_hash").Scan(&count); err != nil {
		return roseerr.Unexpected(err)
	}
	if count > 0 {
		return nil
	}
	if _, err := conn.Exec("INSERT INTO schema_hash (hash) VALUES (?)", schemaHash()); err != nil {
		return roseerr.Unexpected(err)
	}
	return nil
}
