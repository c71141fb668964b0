// Package catalog holds the ordered set of pattern definitions used to
// normalize lines, including the reserved line terminator pattern.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

var (
	// ErrUnknownPattern is returned when an id is not present in the catalog.
	ErrUnknownPattern = errors.New("unknown pattern id")

	// ErrTerminatorRemoved is returned when removing the terminator pattern.
	ErrTerminatorRemoved = errors.New("the terminator pattern cannot be removed")
)

// DefaultTerminator is the id reserved for the line terminator pattern.
const DefaultTerminator uint = 0

// Catalog is a set of pattern definitions keyed by id.
// Every mutation increments Version so compiled matchers can detect staleness.
type Catalog struct {
	mu         sync.RWMutex
	terminator uint
	defs       map[uint]*types.PatternDefinition
	version    uint64
}

// New creates a catalog. Ids must be unique and the terminator must be present.
func New(terminator uint, defs ...*types.PatternDefinition) (*Catalog, error) {
	c := &Catalog{
		terminator: terminator,
		defs:       make(map[uint]*types.PatternDefinition, len(defs)),
		version:    1,
	}
	for _, d := range defs {
		if d == nil {
			return nil, fmt.Errorf("nil pattern definition")
		}
		if _, dup := c.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate pattern id %d", d.ID)
		}
		c.defs[d.ID] = d.Clone()
	}
	if _, ok := c.defs[terminator]; !ok {
		return nil, fmt.Errorf("terminator pattern %d is not defined", terminator)
	}
	return c, nil
}

// Default returns a fresh copy of the embedded default catalog.
// Runs of bytes at or above 0x7f are tagged HEX (id 4) through the `[\x7f-\xff]` branch of its rule,
// which ties with the non-word catch-all (id 7) and wins by the lower id.
func Default() (*Catalog, error) {
	return NewLoader().LoadDefault()
}

// Terminator returns the id of the line terminator pattern.
func (c *Catalog) Terminator() uint {
	return c.terminator
}

// Version returns a counter that changes on every mutation.
func (c *Catalog) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Len returns the number of definitions, terminator included.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

// Definitions returns copies of all definitions ordered by id.
func (c *Catalog) Definitions() []*types.PatternDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]uint, 0, len(c.defs))
	for id := range c.defs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	defs := make([]*types.PatternDefinition, len(ids))
	for i, id := range ids {
		defs[i] = c.defs[id].Clone()
	}
	return defs
}

// Get returns a copy of the definition with the given id.
func (c *Catalog) Get(id uint) (*types.PatternDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.defs[id]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Placeholder returns the placeholder token for id, or "" if unknown.
func (c *Catalog) Placeholder(id uint) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.defs[id]; ok {
		return d.Placeholder
	}
	return ""
}

// Replace inserts or overwrites the definition stored under id.
// The definition's ID field is forced to id.
func (c *Catalog) Replace(id uint, def *types.PatternDefinition) error {
	if def == nil {
		return fmt.Errorf("nil pattern definition")
	}
	if def.Pattern == "" {
		return fmt.Errorf("pattern %d: rule is required", id)
	}

	d := def.Clone()
	d.ID = id

	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[id] = d
	c.version++
	return nil
}

// Remove deletes the definition stored under id.
func (c *Catalog) Remove(id uint) error {
	if id == c.terminator {
		return ErrTerminatorRemoved
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.defs[id]; !ok {
		return fmt.Errorf("pattern %d: %w", id, ErrUnknownPattern)
	}
	delete(c.defs, id)
	c.version++
	return nil
}

// Clone returns an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Catalog{
		terminator: c.terminator,
		defs:       make(map[uint]*types.PatternDefinition, len(c.defs)),
		version:    c.version,
	}
	for id, d := range c.defs {
		clone.defs[id] = d.Clone()
	}
	return clone
}
