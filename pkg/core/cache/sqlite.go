package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createCacheTableSQL = `
CREATE TABLE IF NOT EXISTS cache (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     BLOB NOT NULL,
	created_at TEXT DEFAULT (datetime('now')),
	PRIMARY KEY (namespace, key)
);`

// SQLite is a persistent cache layer backed by a local database file, so
// filing data survives across runs.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the cache database at path.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createCacheTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get returns the stored value and whether it was present.
func (s *SQLite) Get(ctx context.Context, namespace, key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cache WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set stores a value, replacing any previous one.
func (s *SQLite) Set(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache (namespace, key, value) VALUES (?, ?, ?)`,
		namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("cache set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Clear drops one namespace, or everything when namespace is empty.
func (s *SQLite) Clear(ctx context.Context, namespace string) error {
	var err error
	if namespace == "" {
		_, err = s.db.ExecContext(ctx, `DELETE FROM cache`)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM cache WHERE namespace = ?`, namespace)
	}
	if err != nil {
		return fmt.Errorf("cache clear %q: %w", namespace, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
