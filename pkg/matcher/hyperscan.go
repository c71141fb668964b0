//go:build cgo && hyperscan

package matcher

import (
	"fmt"

	"github.com/flier/gohs/hyperscan"
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// HyperscanMatcher implements Matcher using a Hyperscan block database.
// Every pattern is compiled with SomLeftMost so start offsets are exact.
type HyperscanMatcher struct {
	db      hyperscan.BlockDatabase // Compiled patterns
	scratch *hyperscan.Scratch      // Per-scan scratch space
	ids     []uint                  // Hyperscan expression index -> pattern id
}

// NewHyperscan creates a Hyperscan-based matcher.
func NewHyperscan(cfg Config) (*HyperscanMatcher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	patterns := make([]*hyperscan.Pattern, len(cfg.Patterns))
	ids := make([]uint, len(cfg.Patterns))
	for i, def := range cfg.Patterns {
		patterns[i] = hyperscanPattern(def, i)
		ids[i] = def.ID
	}

	db, err := hyperscan.NewBlockDatabase(patterns...)
	if err != nil {
		return nil, explainCompileFailure(cfg.Patterns, err)
	}

	scratch, err := hyperscan.NewScratch(db)
	if err != nil {
		db.Close()
		return nil, &CompileError{Err: fmt.Errorf("failed to allocate Hyperscan scratch: %w", err)}
	}

	return &HyperscanMatcher{
		db:      db,
		scratch: scratch,
		ids:     ids,
	}, nil
}

func hyperscanPattern(def *types.PatternDefinition, index int) *hyperscan.Pattern {
	flags := hyperscan.SomLeftMost
	ef := effectiveFlags(def)
	if ef.Has(types.Caseless) {
		flags |= hyperscan.Caseless
	}
	if ef.Has(types.DotAll) {
		flags |= hyperscan.DotAll
	}
	if ef.Has(types.MultiLine) {
		flags |= hyperscan.MultiLine
	}
	if ef.Has(types.SingleMatch) {
		flags |= hyperscan.SingleMatch
	}

	p := hyperscan.NewPattern(stripExtendedMode(def.Pattern), flags)
	p.Id = index
	return p
}

// explainCompileFailure compiles patterns one at a time to name the offender.
func explainCompileFailure(defs []*types.PatternDefinition, err error) error {
	for i, def := range defs {
		db, perr := hyperscan.NewBlockDatabase(hyperscanPattern(def, i))
		if perr != nil {
			return patternError(def, perr)
		}
		db.Close()
	}
	return &CompileError{Err: fmt.Errorf("failed to compile Hyperscan database: %w", err)}
}

// Scan reports every match in data to onMatch.
// Hyperscan reports matches in end offset order.
func (m *HyperscanMatcher) Scan(data []byte, onMatch MatchHandler) error {
	var handlerErr error
	handler := func(id uint, from, to uint64, flags uint, context interface{}) error {
		if int(id) >= len(m.ids) {
			handlerErr = fmt.Errorf("invalid pattern ID from Hyperscan: %d", id)
			return handlerErr
		}
		if err := onMatch(m.ids[id], from, to); err != nil {
			handlerErr = err
			return err
		}
		return nil
	}

	if err := m.db.Scan(data, m.scratch, handler, nil); err != nil {
		if handlerErr != nil {
			return handlerErr
		}
		return fmt.Errorf("Hyperscan scan failed: %w", err)
	}
	return nil
}

// Close releases Hyperscan resources.
func (m *HyperscanMatcher) Close() error {
	if m.scratch != nil {
		if err := m.scratch.Free(); err != nil {
			return fmt.Errorf("failed to free scratch: %w", err)
		}
		m.scratch = nil
	}
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		m.db = nil
	}
	return nil
}
