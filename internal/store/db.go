// Package store provides the persistent relational call-graph database:
// files, classes, and the six Decl/Impl/Call function variants, with
// idempotent get-or-add writers and cascade-delete-on-reanalysis.
package store

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/dolthub/driver"
	_ "modernc.org/sqlite"
)

// Store wraps the database/sql handle backing the call graph, plus the
// driver name (needed because Dolt and modernc.org/sqlite accept the
// same statement text but not quite the same connection ceremony).
type Store struct {
	db     *sql.DB
	driver string
	dbPath string // empty for the in-memory backend
}

// OpenFile opens or creates a Dolt-backed store rooted at dir. The Dolt
// repository itself lives in dir, mirroring the commitname/commitemail
// DSN convention used for every Dolt connection in this codebase.
func OpenFile(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	initDSN := fmt.Sprintf("file://%s?commitname=clangcg&commitemail=clangcg@local", dir)
	initDB, err := sql.Open("dolt", initDSN)
	if err != nil {
		return nil, fmt.Errorf("open dolt for init: %w", err)
	}
	if _, err := initDB.Exec("CREATE DATABASE IF NOT EXISTS callgraph"); err != nil {
		initDB.Close()
		return nil, fmt.Errorf("create database: %w", err)
	}
	initDB.Close()

	dsn := fmt.Sprintf("file://%s?commitname=clangcg&commitemail=clangcg@local&database=callgraph", dir)
	db, err := sql.Open("dolt", dsn)
	if err != nil {
		return nil, fmt.Errorf("open dolt db: %w", err)
	}

	s := &Store{db: db, driver: "dolt", dbPath: dir}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory store backed by modernc.org/sqlite. It
// exposes identical semantics to OpenFile, for use in tests where
// spinning up a Dolt repository per test would be slow.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single connection: ":memory:" sqlite databases are per-connection,
	// and sql.DB pools connections lazily by default.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, driver: "sqlite"}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced or diagnostic use.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the on-disk database directory, or "" for OpenMemory stores.
func (s *Store) Path() string {
	return s.dbPath
}
