package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// dialect captures the differences between the SQL backends.
type dialect struct {
	name   string
	driver string
	blob   string // column type for raw bytes
	dollar bool   // placeholders are $1, $2, ... instead of ?
	conns  int    // connection limit, 0 for unlimited
}

var (
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", blob: "BLOB", conns: 1}
	postgresDialect = dialect{name: "postgres", driver: "pgx", blob: "BYTEA", dollar: true}
)

// rebind rewrites ? placeholders for the dialect.
func (d dialect) rebind(query string) string {
	if !d.dollar {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB, d dialect) error {
	if err := createSchemaVersionTable(db, d); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	if err := createSourcesTable(db); err != nil {
		return fmt.Errorf("creating sources table: %w", err)
	}

	if err := createLinesTable(db, d); err != nil {
		return fmt.Errorf("creating lines table: %w", err)
	}

	if err := createShapesTable(db, d); err != nil {
		return fmt.Errorf("creating shapes table: %w", err)
	}

	return nil
}

func createSchemaVersionTable(db *sql.DB, d dialect) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec(d.rebind("INSERT INTO schema_version (version) VALUES (?)"), SchemaVersion)
		return err
	}

	return nil
}

func createSourcesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sources (
			path TEXT PRIMARY KEY NOT NULL,
			kind TEXT NOT NULL,
			size BIGINT NOT NULL
		)
	`)
	return err
}

func createLinesTable(db *sql.DB, d dialect) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS lines (
			source TEXT NOT NULL,
			number BIGINT NOT NULL,
			byte_offset BIGINT NOT NULL,
			text %s,
			sections_json TEXT NOT NULL,
			shape_id TEXT NOT NULL,
			PRIMARY KEY (source, number)
		)
	`, d.blob))
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_lines_shape_id ON lines(shape_id)
	`)
	return err
}

func createShapesTable(db *sql.DB, d dialect) error {
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS shapes (
			id TEXT PRIMARY KEY NOT NULL,
			line_count BIGINT NOT NULL,
			example_source TEXT NOT NULL,
			example_number BIGINT NOT NULL,
			example_offset BIGINT NOT NULL,
			example_text %s,
			example_sections_json TEXT NOT NULL
		)
	`, d.blob))
	return err
}
