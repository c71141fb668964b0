package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
// It is used for ":memory:" paths and for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	sources map[string]types.Source
	lines   map[string]map[int64]*types.Line // source -> line number -> line
	shapes  map[types.ShapeID]*types.Shape
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sources: make(map[string]types.Source),
		lines:   make(map[string]map[int64]*types.Line),
		shapes:  make(map[types.ShapeID]*types.Shape),
	}
}

// AddSource records an input.
func (m *MemoryStore) AddSource(src types.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sources[src.Path]; exists {
		return nil
	}
	m.sources[src.Path] = src
	return nil
}

// AddLine stores one line and counts it towards its shape.
func (m *MemoryStore) AddLine(source string, line *types.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addLine(source, line)
	return nil
}

// AddLines stores a batch of lines.
func (m *MemoryStore) AddLines(source string, lines []*types.Line) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, line := range lines {
		m.addLine(source, line)
	}
	return nil
}

func (m *MemoryStore) addLine(source string, line *types.Line) {
	byNumber := m.lines[source]
	if byNumber == nil {
		byNumber = make(map[int64]*types.Line)
		m.lines[source] = byNumber
	}
	if _, exists := byNumber[line.Number]; exists {
		return
	}
	stored := line.Clone()
	byNumber[line.Number] = stored

	id := stored.Shape()
	if shape, ok := m.shapes[id]; ok {
		shape.Count++
		return
	}
	m.shapes[id] = &types.Shape{ID: id, Count: 1, Example: stored}
}

// GetSources retrieves all sources ordered by path.
func (m *MemoryStore) GetSources() ([]types.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]types.Source, 0, len(m.sources))
	for _, src := range m.sources {
		result = append(result, src)
	}
	slices.SortFunc(result, func(a, b types.Source) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return result, nil
}

// GetLines retrieves the lines of source ordered by line number.
func (m *MemoryStore) GetLines(source string) ([]*types.Line, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byNumber := m.lines[source]
	result := make([]*types.Line, 0, len(byNumber))
	for _, line := range byNumber {
		result = append(result, line.Clone())
	}
	slices.SortFunc(result, func(a, b *types.Line) int {
		return cmp.Compare(a.Number, b.Number)
	})
	return result, nil
}

// GetShapes retrieves all shapes, most frequent first.
func (m *MemoryStore) GetShapes() ([]*types.Shape, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Shape, 0, len(m.shapes))
	for _, shape := range m.shapes {
		c := *shape
		c.Example = shape.Example.Clone()
		result = append(result, &c)
	}
	slices.SortFunc(result, func(a, b *types.Shape) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.ID.Hex(), b.ID.Hex())
	})
	return result, nil
}

// SourceExists checks if a source has already been normalized.
func (m *MemoryStore) SourceExists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.sources[path]
	return exists, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
