// Package resolver turns raw, possibly overlapping match events into lines
// with ordered, non-overlapping sections.
//
// Within a line the resolver keeps one candidate per start offset: the
// longest match wins and equal lengths go to the lower pattern id. When the
// terminator pattern fires, candidates are swept in start order and every
// candidate lying inside an already accepted section is discarded.
package resolver

import (
	"maps"
	"slices"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// Policy controls which lines are emitted.
type Policy struct {
	// EmitBareLines emits lines that have no sections.
	EmitBareLines bool
	// FlushTrailing emits a final line that has no terminator.
	FlushTrailing bool
}

// DefaultPolicy emits bare lines and drops unterminated trailing fragments.
func DefaultPolicy() Policy {
	return Policy{EmitBareLines: true}
}

// Candidate is the best match seen so far at one start offset.
type Candidate struct {
	End       int
	PatternID uint
}

// Resolver is the per-scan state machine. It is not safe for concurrent use.
type Resolver struct {
	terminator uint
	policy     Policy

	block      []byte
	offset     int64 // absolute offset of block[0]
	lineStart  int
	lineNumber int64
	candidates map[int]Candidate
	lines      []types.Line
}

// New creates a resolver for the given terminator pattern id.
func New(terminator uint, policy Policy) *Resolver {
	return &Resolver{
		terminator: terminator,
		policy:     policy,
		candidates: make(map[int]Candidate),
	}
}

// Reset starts a new block located at the given absolute stream offset.
// Line numbering continues across blocks.
func (r *Resolver) Reset(block []byte, offset int64) {
	r.block = block
	r.offset = offset
	r.lineStart = 0
	clear(r.candidates)
}

// OnMatch records one match event. Offsets are absolute within the current block.
// Its signature matches matcher.MatchHandler.
func (r *Resolver) OnMatch(id uint, from, to uint64) error {
	start, end := int(from), int(to)
	if end > len(r.block) {
		end = len(r.block)
	}

	if id == r.terminator {
		if start < r.lineStart {
			start = r.lineStart
		}
		if end < start {
			end = start
		}
		r.finishLine(start)
		r.lineStart = end
		return nil
	}

	if start < r.lineStart {
		start = r.lineStart
	}
	if end <= start {
		return nil
	}

	rel, relEnd := start-r.lineStart, end-r.lineStart
	if c, ok := r.candidates[rel]; ok {
		if relEnd < c.End || (relEnd == c.End && id >= c.PatternID) {
			return nil
		}
	}
	r.candidates[rel] = Candidate{End: relEnd, PatternID: id}
	return nil
}

// Flush finishes a pending unterminated line when the policy allows it.
// Call it once after the last block of a stream.
func (r *Resolver) Flush() {
	if !r.policy.FlushTrailing || r.lineStart >= len(r.block) {
		clear(r.candidates)
		return
	}
	r.finishLine(len(r.block))
	r.lineStart = len(r.block)
}

// Drain returns the lines finished since the previous call.
func (r *Resolver) Drain() []types.Line {
	lines := r.lines
	r.lines = nil
	return lines
}

// Candidates returns a copy of the candidate set of the current line,
// keyed by start offset relative to the line start.
func (r *Resolver) Candidates() map[int]Candidate {
	return maps.Clone(r.candidates)
}

// LineStart returns the offset within the current block where the current line begins.
func (r *Resolver) LineStart() int {
	return r.lineStart
}

// Lines returns the number of terminated lines seen so far.
func (r *Resolver) Lines() int64 {
	return r.lineNumber
}

func (r *Resolver) finishLine(textEnd int) {
	r.lineNumber++
	text := r.block[r.lineStart:textEnd]
	sections := Sweep(r.candidates, len(text))
	clear(r.candidates)

	if len(sections) == 0 && !r.policy.EmitBareLines {
		return
	}
	r.lines = append(r.lines, types.Line{
		Number:   r.lineNumber,
		Offset:   r.offset + int64(r.lineStart),
		Text:     append([]byte(nil), text...),
		Sections: sections,
	})
}

// Sweep converts a candidate set into ordered, non-overlapping sections for
// a line of textLen bytes.
//
// Candidates are visited in start order. One that ends at or before the
// furthest accepted end is contained and discarded. One that starts inside
// the last accepted section but ends beyond it is a partial overlap: the
// lower pattern id keeps the shared bytes and the other side is trimmed.
func Sweep(candidates map[int]Candidate, textLen int) []types.Section {
	if len(candidates) == 0 {
		return nil
	}

	starts := slices.Sorted(maps.Keys(candidates))
	sections := make([]types.Section, 0, len(starts))
	extent := 0

	for _, start := range starts {
		if start >= textLen {
			break
		}
		c := candidates[start]
		s := types.Section{Start: start, End: min(c.End, textLen), PatternID: c.PatternID}
		if s.End <= extent {
			continue
		}

		if n := len(sections); n > 0 && s.Start < extent {
			last := &sections[n-1]
			if s.PatternID < last.PatternID && s.Start > last.Start {
				last.End = s.Start
			} else {
				s.Start = last.End
			}
		}
		sections = append(sections, s)
		extent = s.End
	}
	return sections
}
