// Package store persists normalized lines and the shapes they fall into.
package store

import (
	"fmt"
	"strings"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// Store provides persistence for normalization results.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (memory, SQLite, PostgreSQL).
type Store interface {
	// AddSource records an input as fully normalized. Callers add it after
	// its lines, so a source whose run failed is not reported by
	// SourceExists. Adding the same path twice is a no-op.
	AddSource(src types.Source) error

	// AddLine stores one line of source and counts it towards its shape.
	// A line number already stored for source is ignored.
	AddLine(source string, line *types.Line) error

	// AddLines stores a batch of lines of source atomically.
	AddLines(source string, lines []*types.Line) error

	// GetSources retrieves all sources ordered by path.
	GetSources() ([]types.Source, error)

	// GetLines retrieves the lines of source ordered by line number.
	GetLines(source string) ([]*types.Line, error)

	// GetShapes retrieves all shapes, most frequent first.
	GetShapes() ([]*types.Shape, error)

	// SourceExists checks if a source has already been normalized.
	SourceExists(path string) (bool, error)

	// Close closes the underlying connection.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path selects the backend:
	//   ":memory:"                      in-memory store
	//   "postgres://..." / "postgresql://..." PostgreSQL
	//   anything else                   SQLite database file
	Path string
}

// MemoryPath selects the in-memory store.
const MemoryPath = ":memory:"

// New creates a Store for cfg.Path.
func New(cfg Config) (Store, error) {
	switch {
	case cfg.Path == "":
		return nil, fmt.Errorf("path is required")
	case cfg.Path == MemoryPath:
		return NewMemory(), nil
	case IsPostgresURL(cfg.Path):
		return NewPostgres(cfg.Path)
	default:
		return NewSQLite(cfg.Path)
	}
}

// IsPostgresURL reports whether path is a PostgreSQL connection URL.
func IsPostgresURL(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}
