package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store owns the SQLite database backing every collection. Providers
// receive it as a core.Querier at construction; they never open or
// manage connections themselves.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath, applies the
// performance pragmas and bootstraps the collection schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
		"PRAGMA cache_size = -64000", // 64MB cache
		"PRAGMA temp_store = memory",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS clinical_studies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			phase TEXT NOT NULL DEFAULT '',
			condition TEXT NOT NULL DEFAULT '',
			drug TEXT NOT NULL DEFAULT '',
			institution TEXT NOT NULL DEFAULT '',
			participant_count INTEGER NOT NULL DEFAULT 0,
			start_date TEXT,
			end_date TEXT,
			relevance_score REAL NOT NULL DEFAULT 1.0
		)`,
		`CREATE TABLE IF NOT EXISTS data_products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			study_id INTEGER NOT NULL REFERENCES clinical_studies(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL DEFAULT '',
			size TEXT NOT NULL DEFAULT '',
			access_level TEXT NOT NULL DEFAULT 'Public'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_data_products_study ON data_products(study_id)`,
		`CREATE TABLE IF NOT EXISTS scientific_papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL DEFAULT '',
			authors TEXT NOT NULL DEFAULT '[]',
			journal TEXT NOT NULL DEFAULT '',
			doi TEXT NOT NULL DEFAULT '',
			publication_date TEXT,
			keywords TEXT NOT NULL DEFAULT '[]',
			citation_count INTEGER NOT NULL DEFAULT 0,
			reference_list TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS data_domains (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			domain_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT '',
			data_format TEXT NOT NULL DEFAULT '',
			schema_definition TEXT NOT NULL DEFAULT '{}',
			validation_rules TEXT NOT NULL DEFAULT '{}',
			sample_data TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE TABLE IF NOT EXISTS search_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			query TEXT NOT NULL,
			collection_type TEXT NOT NULL,
			filters TEXT NOT NULL DEFAULT '{}',
			results_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history(user_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// QueryContext implements core.Querier.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// QueryRowContext implements core.Querier.
func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// ExecContext executes a statement against the store.
func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats returns row counts per collection plus the history size.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)
	tables := map[string]string{
		"clinical_studies":  "clinical_studies",
		"scientific_papers": "scientific_papers",
		"data_domains":      "data_domains",
		"search_history":    "search_history",
	}

	for name, table := range tables {
		var count int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("counting %s: %w", name, err)
		}
		stats[name] = count
	}

	return stats, nil
}

// Optimize runs SQLite's query planner maintenance.
func (s *Store) Optimize() error {
	_, err := s.db.Exec("PRAGMA optimize")
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
