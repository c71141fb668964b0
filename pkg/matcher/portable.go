package matcher

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/linenorm/pkg/prefilter"
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// MatchTimeout bounds a single pattern search so catastrophic backtracking
// surfaces as an error instead of a hang.
const MatchTimeout = 5 * time.Second

// portablePattern is a compiled pattern definition.
type portablePattern struct {
	def    *types.PatternDefinition
	re     *regexp2.Regexp
	single bool
}

// PortableMatcher implements Matcher using regexp2 (no CGO required).
//
// Blocks are decoded one byte per rune, so rune offsets equal byte offsets
// and classes such as [\x7f-\xff] match raw high bytes. The boundary pattern
// is located first; every other pattern then runs on each segment between
// boundaries, and a segment's events are followed by its boundary event.
// Within a segment each pattern reports leftmost, non-overlapping matches.
//
// Thread Safety: PortableMatcher is NOT safe for concurrent use.
type PortableMatcher struct {
	boundary  *portablePattern
	patterns  map[*types.PatternDefinition]*portablePattern
	prefilter *prefilter.Prefilter
	runes     []rune
	fired     map[uint]bool
}

// NewPortable compiles the configured patterns with regexp2.
func NewPortable(cfg Config) (*PortableMatcher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	m := &PortableMatcher{
		patterns: make(map[*types.PatternDefinition]*portablePattern, len(cfg.Patterns)),
		fired:    make(map[uint]bool),
	}

	var others []*types.PatternDefinition
	for _, def := range cfg.Patterns {
		p, err := compilePortable(def)
		if err != nil {
			return nil, err
		}
		if def.ID == cfg.Boundary {
			m.boundary = p
			continue
		}
		m.patterns[def] = p
		others = append(others, def)
	}
	m.prefilter = prefilter.New(others)

	return m, nil
}

func compilePortable(def *types.PatternDefinition) (*portablePattern, error) {
	pattern := stripExtendedMode(def.Pattern)
	flags := effectiveFlags(def)

	opts := regexp2.RegexOptions(0)
	if flags.Has(types.Caseless) {
		opts |= regexp2.IgnoreCase
	}
	if flags.Has(types.DotAll) {
		opts |= regexp2.Singleline
	}
	if flags.Has(types.MultiLine) {
		opts |= regexp2.Multiline
	}

	// Try RE2 mode first for ASCII-only \d, \w and \s
	re, err := regexp2.Compile(pattern, opts|regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(pattern, opts)
		if err != nil {
			return nil, patternError(def, err)
		}
	}
	re.MatchTimeout = MatchTimeout

	return &portablePattern{def: def, re: re, single: flags.Has(types.SingleMatch)}, nil
}

// ExampleTester compiles def with the portable engine settings and returns a
// function reporting whether an example, read as raw bytes, contains a match.
// Compile failures are *CompileError.
func ExampleTester(def *types.PatternDefinition) (func(example string) (bool, error), error) {
	p, err := compilePortable(def)
	if err != nil {
		return nil, err
	}
	return func(example string) (bool, error) {
		return p.re.MatchRunes(decodeBytes(nil, []byte(example)))
	}, nil
}

// Scan reports every match in data to onMatch.
func (m *PortableMatcher) Scan(data []byte, onMatch MatchHandler) error {
	m.runes = decodeBytes(m.runes[:0], data)
	clear(m.fired)

	var active []*portablePattern
	for _, def := range m.prefilter.Filter(data) {
		active = append(active, m.patterns[def])
	}

	segStart := 0
	if m.boundary != nil {
		match, err := m.boundary.re.FindRunesMatch(m.runes)
		for match != nil && err == nil {
			start, end := match.Index, match.Index+match.Length
			if end > start {
				if err := m.scanSegment(active, segStart, start, onMatch); err != nil {
					return err
				}
				if err := onMatch(m.boundary.def.ID, uint64(start), uint64(end)); err != nil {
					return err
				}
				segStart = end
			}
			match, err = m.boundary.re.FindNextMatch(match)
		}
		if err != nil {
			return fmt.Errorf("pattern %d: %w", m.boundary.def.ID, err)
		}
	}

	return m.scanSegment(active, segStart, len(m.runes), onMatch)
}

func (m *PortableMatcher) scanSegment(active []*portablePattern, lo, hi int, onMatch MatchHandler) error {
	if lo >= hi {
		return nil
	}
	segment := m.runes[lo:hi]

	for _, p := range active {
		if p.single && m.fired[p.def.ID] {
			continue
		}

		match, err := p.re.FindRunesMatch(segment)
		for match != nil && err == nil {
			if match.Length > 0 {
				start := uint64(lo + match.Index)
				if err := onMatch(p.def.ID, start, start+uint64(match.Length)); err != nil {
					return err
				}
				if p.single {
					m.fired[p.def.ID] = true
					break
				}
			}
			match, err = p.re.FindNextMatch(match)
		}
		if err != nil {
			return fmt.Errorf("pattern %d: %w", p.def.ID, err)
		}
	}
	return nil
}

// Close releases resources.
func (m *PortableMatcher) Close() error {
	m.runes = nil
	return nil
}

// decodeBytes maps every byte to the rune with the same value.
func decodeBytes(dst []rune, data []byte) []rune {
	if cap(dst) < len(data) {
		dst = make([]rune, 0, len(data))
	}
	dst = dst[:len(data)]
	for i, b := range data {
		dst[i] = rune(b)
	}
	return dst
}
