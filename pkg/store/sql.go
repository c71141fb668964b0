package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// sqlStore implements Store on database/sql. SQLiteStore and PostgresStore
// differ only in driver and dialect.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func openSQL(d dialect, dsn string) (*sqlStore, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d.name, err)
	}
	if d.conns > 0 {
		db.SetMaxOpenConns(d.conns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", d.name, err)
	}

	if err := createSchema(db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &sqlStore{db: db, dialect: d}, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// AddSource records an input.
func (s *sqlStore) AddSource(src types.Source) error {
	_, err := s.db.Exec(s.dialect.rebind(`
		INSERT INTO sources (path, kind, size) VALUES (?, ?, ?)
		ON CONFLICT (path) DO NOTHING
	`), src.Path, src.Kind(), src.Size)
	if err != nil {
		return fmt.Errorf("inserting source: %w", err)
	}
	return nil
}

// AddLine stores one line and counts it towards its shape.
func (s *sqlStore) AddLine(source string, line *types.Line) error {
	return s.AddLines(source, []*types.Line{line})
}

// AddLines stores a batch of lines in one transaction.
func (s *sqlStore) AddLines(source string, lines []*types.Line) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, line := range lines {
		if err := s.addLine(tx, source, line); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) addLine(tx execer, source string, line *types.Line) error {
	sectionsJSON, err := json.Marshal(line.Sections)
	if err != nil {
		return fmt.Errorf("marshaling sections: %w", err)
	}
	shape := line.Shape()

	result, err := tx.Exec(s.dialect.rebind(`
		INSERT INTO lines (source, number, byte_offset, text, sections_json, shape_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source, number) DO NOTHING
	`),
		source,
		line.Number,
		line.Offset,
		line.Text,
		string(sectionsJSON),
		shape.Hex(),
	)
	if err != nil {
		return fmt.Errorf("inserting line %d: %w", line.Number, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return nil
	}

	_, err = tx.Exec(s.dialect.rebind(`
		INSERT INTO shapes (id, line_count, example_source, example_number, example_offset, example_text, example_sections_json)
		VALUES (?, 1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET line_count = shapes.line_count + 1
	`),
		shape.Hex(),
		source,
		line.Number,
		line.Offset,
		line.Text,
		string(sectionsJSON),
	)
	if err != nil {
		return fmt.Errorf("counting shape: %w", err)
	}
	return nil
}

// GetSources retrieves all sources ordered by path.
func (s *sqlStore) GetSources() ([]types.Source, error) {
	rows, err := s.db.Query("SELECT path, size FROM sources ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []types.Source
	for rows.Next() {
		var src types.Source
		if err := rows.Scan(&src.Path, &src.Size); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// GetLines retrieves the lines of source ordered by line number.
func (s *sqlStore) GetLines(source string) ([]*types.Line, error) {
	rows, err := s.db.Query(s.dialect.rebind(`
		SELECT number, byte_offset, text, sections_json
		FROM lines
		WHERE source = ?
		ORDER BY number
	`), source)
	if err != nil {
		return nil, fmt.Errorf("querying lines: %w", err)
	}
	defer rows.Close()

	var lines []*types.Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lines: %w", err)
	}

	return lines, nil
}

// GetShapes retrieves all shapes, most frequent first.
func (s *sqlStore) GetShapes() ([]*types.Shape, error) {
	rows, err := s.db.Query(`
		SELECT id, line_count, example_number, example_offset, example_text, example_sections_json
		FROM shapes
		ORDER BY line_count DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying shapes: %w", err)
	}
	defer rows.Close()

	var shapes []*types.Shape
	for rows.Next() {
		var shape types.Shape
		var example types.Line
		var sectionsJSON string

		err := rows.Scan(
			&shape.ID,
			&shape.Count,
			&example.Number,
			&example.Offset,
			&example.Text,
			&sectionsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning shape: %w", err)
		}

		if err := json.Unmarshal([]byte(sectionsJSON), &example.Sections); err != nil {
			return nil, fmt.Errorf("unmarshaling sections: %w", err)
		}
		shape.Example = &example
		shapes = append(shapes, &shape)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shapes: %w", err)
	}

	return shapes, nil
}

// SourceExists checks if a source has already been normalized.
func (s *sqlStore) SourceExists(path string) (bool, error) {
	var count int
	err := s.db.QueryRow(s.dialect.rebind("SELECT COUNT(*) FROM sources WHERE path = ?"), path).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking source existence: %w", err)
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func scanLine(rows *sql.Rows) (*types.Line, error) {
	var line types.Line
	var sectionsJSON string

	if err := rows.Scan(&line.Number, &line.Offset, &line.Text, &sectionsJSON); err != nil {
		return nil, fmt.Errorf("scanning line: %w", err)
	}
	if err := json.Unmarshal([]byte(sectionsJSON), &line.Sections); err != nil {
		return nil, fmt.Errorf("unmarshaling sections: %w", err)
	}
	return &line, nil
}
