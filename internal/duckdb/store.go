// Package duckdb persists genotype matrices in DuckDB.
// A matrix is stored in long format (one row per non-missing call) next to
// its ordered sample and variant labels, keyed by the source file path.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"
)

// Store manages a DuckDB connection holding genotype matrices.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path, logger: zap.NewNop()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// SetLogger sets the logger for info messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			path VARCHAR PRIMARY KEY,
			size BIGINT,
			mod_time_ns BIGINT,
			checksum UBIGINT,
			n_variants BIGINT,
			n_samples BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			source VARCHAR,
			idx INTEGER,
			sample_id VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS variants (
			source VARCHAR,
			idx BIGINT,
			variant_id VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS genotypes (
			source VARCHAR,
			variant_idx BIGINT,
			sample_idx INTEGER,
			genotype INTEGER
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
