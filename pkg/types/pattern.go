package types

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// PatternFlag is a bitset of engine-independent compile flags.
type PatternFlag uint

const (
	// Caseless matches letters without regard to case.
	Caseless PatternFlag = 1 << iota
	// DotAll lets . match newlines.
	DotAll
	// MultiLine makes ^ and $ match at line boundaries.
	MultiLine
	// SingleMatch reports at most one match per scan for the pattern.
	SingleMatch
)

var flagNames = []struct {
	flag PatternFlag
	name string
}{
	{Caseless, "caseless"},
	{DotAll, "dotall"},
	{MultiLine, "multiline"},
	{SingleMatch, "singlematch"},
}

// Has reports whether all bits of f2 are set in f.
func (f PatternFlag) Has(f2 PatternFlag) bool {
	return f&f2 == f2
}

// Names returns the flag names in a stable order.
func (f PatternFlag) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

// String implements Stringer.
func (f PatternFlag) String() string {
	return strings.Join(f.Names(), "|")
}

// ParsePatternFlags converts flag names (as written in catalog files) into a PatternFlag.
func ParsePatternFlags(names []string) (PatternFlag, error) {
	var f PatternFlag
	for _, name := range names {
		found := false
		for _, fn := range flagNames {
			if strings.EqualFold(strings.TrimSpace(name), fn.name) {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown pattern flag %q", name)
		}
	}
	return f, nil
}

// PatternDefinition is one entry of a pattern catalog.
type PatternDefinition struct {
	ID          uint        // priority and identity; lower wins ties
	Name        string      // short name, e.g. "TS"
	Pattern     string      // regex rule
	Flags       PatternFlag // compile flags
	Placeholder string      // display token substituted by callers, e.g. "<TS>"
	Description string      // optional
	Keywords    []string    // literal keywords for Aho-Corasick prefiltering
	Examples    []string    // strings the rule must match
}

// StructuralID computes a SHA-1 over the rule and its flags.
// Two definitions with the same structural ID compile to the same automaton.
func (p *PatternDefinition) StructuralID() string {
	h := sha1.New()
	h.Write([]byte(p.Pattern))
	fmt.Fprintf(h, "\x00%d", p.Flags)
	return hex.EncodeToString(h.Sum(nil))
}

// Clone returns a deep copy.
func (p *PatternDefinition) Clone() *PatternDefinition {
	c := *p
	c.Keywords = append([]string(nil), p.Keywords...)
	c.Examples = append([]string(nil), p.Examples...)
	return &c
}
