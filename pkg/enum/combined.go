package enum

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// CombinedEnumerator runs multiple enumerators sequentially and deduplicates
// sources by cleaned path so each input is yielded at most once.
type CombinedEnumerator struct {
	enumerators []Enumerator
}

// NewCombinedEnumerator creates a CombinedEnumerator that wraps the provided
// enumerators. They are run in order and duplicate paths are suppressed.
func NewCombinedEnumerator(enumerators ...Enumerator) *CombinedEnumerator {
	return &CombinedEnumerator{enumerators: enumerators}
}

// Enumerate runs each child enumerator in sequence, passing unique sources to
// callback.
func (c *CombinedEnumerator) Enumerate(ctx context.Context, callback func(src types.Source) error) error {
	var mu sync.Mutex
	seen := make(map[string]bool)

	for _, e := range c.enumerators {
		err := e.Enumerate(ctx, func(src types.Source) error {
			key := src.Path
			if src.Kind() == "file" {
				key = filepath.Clean(key)
			}

			mu.Lock()
			if seen[key] {
				mu.Unlock()
				return nil
			}
			seen[key] = true
			mu.Unlock()

			return callback(src)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// StdinEnumerator yields standard input as a single source.
type StdinEnumerator struct{}

// Enumerate yields the "-" source.
func (StdinEnumerator) Enumerate(ctx context.Context, callback func(src types.Source) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return callback(types.Source{Path: "-"})
}
