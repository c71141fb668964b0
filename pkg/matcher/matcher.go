// Package matcher compiles a set of pattern definitions into a multi-pattern
// automaton and reports every match in a block as (id, start, end) events.
package matcher

import (
	"fmt"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// MatchHandler receives one match event. Offsets are byte offsets into the
// scanned block, end exclusive. Returning an error aborts the scan.
type MatchHandler func(id uint, start, end uint64) error

// Matcher scans blocks for all patterns at once.
//
// Events may arrive in any order. Implementations are not safe for
// concurrent use; create one matcher per goroutine.
type Matcher interface {
	// Scan reports every match in data to onMatch.
	Scan(data []byte, onMatch MatchHandler) error

	// Close releases resources (e.g., Hyperscan scratch space).
	Close() error
}

// Config for matcher initialization.
type Config struct {
	// Patterns to compile, terminator included.
	Patterns []*types.PatternDefinition

	// Boundary is the id of the line terminator pattern.
	Boundary uint
}

// CompileFunc builds a Matcher from a Config.
type CompileFunc func(cfg Config) (Matcher, error)

// CompileError reports a pattern set that could not be compiled.
// PatternID is meaningful only when HasPattern is set.
type CompileError struct {
	PatternID  uint
	Pattern    string
	HasPattern bool
	Err        error
}

func (e *CompileError) Error() string {
	if e.HasPattern {
		return fmt.Sprintf("compiling pattern %d %q: %v", e.PatternID, e.Pattern, e.Err)
	}
	return fmt.Sprintf("compiling pattern set: %v", e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

func patternError(def *types.PatternDefinition, err error) *CompileError {
	return &CompileError{PatternID: def.ID, Pattern: def.Pattern, HasPattern: true, Err: err}
}

func validateConfig(cfg Config) error {
	if len(cfg.Patterns) == 0 {
		return &CompileError{Err: fmt.Errorf("no patterns provided")}
	}
	seen := make(map[uint]bool, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		if p == nil {
			return &CompileError{Err: fmt.Errorf("nil pattern definition")}
		}
		if seen[p.ID] {
			return patternError(p, fmt.Errorf("duplicate pattern id"))
		}
		seen[p.ID] = true
		if p.Pattern == "" {
			return patternError(p, fmt.Errorf("empty rule"))
		}
	}
	return nil
}
