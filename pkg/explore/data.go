package explore

import (
	"fmt"
	"os"
	"sort"

	"github.com/praetorian-inc/linenorm/pkg/catalog"
	"github.com/praetorian-inc/linenorm/pkg/store"
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// exploreData holds all loaded data for the TUI.
type exploreData struct {
	store      store.Store
	catalog    *catalog.Catalog
	shapes     []*shapeRow
	totalLines int64
}

// loadData opens a datastore and loads every shape. Pattern names and
// placeholders come from c.
func loadData(storePath string, c *catalog.Catalog) (*exploreData, error) {
	if storePath == store.MemoryPath {
		return nil, fmt.Errorf("cannot explore an in-memory store")
	}
	if !store.IsPostgresURL(storePath) {
		if _, err := os.Stat(storePath); err != nil {
			return nil, fmt.Errorf("datastore not found: %s", storePath)
		}
	}

	s, err := store.New(store.Config{Path: storePath})
	if err != nil {
		return nil, fmt.Errorf("opening datastore: %w", err)
	}

	shapes, err := s.GetShapes()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("retrieving shapes: %w", err)
	}

	return newExploreData(s, c, shapes), nil
}

func newExploreData(s store.Store, c *catalog.Catalog, shapes []*types.Shape) *exploreData {
	d := &exploreData{store: s, catalog: c}
	for _, sh := range shapes {
		d.totalLines += sh.Count
	}

	d.shapes = make([]*shapeRow, 0, len(shapes))
	for _, sh := range shapes {
		d.shapes = append(d.shapes, buildShapeRow(sh, c, d.totalLines))
	}
	return d
}

// buildShapeRow creates a shapeRow from a stored shape.
func buildShapeRow(sh *types.Shape, c *catalog.Catalog, total int64) *shapeRow {
	row := &shapeRow{
		ID:    sh.ID.Hex(),
		Count: sh.Count,
	}
	if total > 0 {
		row.Share = float64(sh.Count) / float64(total)
	}
	if sh.Example == nil {
		return row
	}

	row.Example = sh.Example
	row.Template = sh.Example.Template(c.Placeholder)
	row.Sections = len(sh.Example.Sections)

	seen := make(map[string]bool)
	for _, s := range sh.Example.Sections {
		name := patternName(c, s.PatternID)
		if !seen[name] {
			seen[name] = true
			row.Patterns = append(row.Patterns, name)
		}
	}
	sort.Strings(row.Patterns)
	return row
}

func patternName(c *catalog.Catalog, id uint) string {
	if d, ok := c.Get(id); ok && d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("#%d", id)
}

// close closes the underlying store.
func (d *exploreData) close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// shapeRow is the view model for one shape in the TUI.
type shapeRow struct {
	ID       string
	Count    int64
	Share    float64 // fraction of all stored lines
	Template string
	Sections int
	Patterns []string // names of the patterns present, sorted
	Example  *types.Line
}
