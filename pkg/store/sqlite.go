package store

import (
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite (pure Go, no CGO required).
// SQLite serializes writers, so the store keeps a single connection; this
// also keeps a ":memory:" database alive for the life of the store.
type SQLiteStore struct {
	*sqlStore
}

// NewSQLite creates a SQLite-based store at path.
// Use ":memory:" for a throwaway database (useful for testing).
func NewSQLite(path string) (*SQLiteStore, error) {
	s, err := openSQL(sqliteDialect, path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: s}, nil
}
