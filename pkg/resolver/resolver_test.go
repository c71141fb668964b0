package resolver

import (
	"testing"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	id       uint
	from, to uint64
}

func feed(t *testing.T, r *Resolver, events []event) {
	t.Helper()
	for _, e := range events {
		require.NoError(t, r.OnMatch(e.id, e.from, e.to))
	}
}

// permutations returns every ordering of events.
func permutations(events []event) [][]event {
	if len(events) <= 1 {
		return [][]event{append([]event(nil), events...)}
	}
	var out [][]event
	for i := range events {
		rest := make([]event, 0, len(events)-1)
		rest = append(rest, events[:i]...)
		rest = append(rest, events[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]event{events[i]}, p...))
		}
	}
	return out
}

func TestResolver_LongestMatchWins(t *testing.T) {
	// Arrange
	r := New(0, DefaultPolicy())
	r.Reset([]byte("12345678\n"), 0)

	// Act
	feed(t, r, []event{{6, 0, 5}, {2, 0, 8}, {0, 8, 9}})

	// Assert
	lines := r.Drain()
	require.Len(t, lines, 1)
	assert.Equal(t, []types.Section{{Start: 0, End: 8, PatternID: 2}}, lines[0].Sections)
}

func TestResolver_TieGoesToLowerID(t *testing.T) {
	for _, order := range permutations([]event{{5, 0, 4}, {3, 0, 4}, {6, 0, 4}}) {
		r := New(0, DefaultPolicy())
		r.Reset([]byte("1234\n"), 0)

		feed(t, r, order)
		feed(t, r, []event{{0, 4, 5}})

		lines := r.Drain()
		require.Len(t, lines, 1)
		assert.Equal(t, []types.Section{{Start: 0, End: 4, PatternID: 3}}, lines[0].Sections, "order %v", order)
	}
}

func TestResolver_ContainedCandidatesDiscarded(t *testing.T) {
	r := New(0, DefaultPolicy())
	r.Reset([]byte("0123456789\n"), 0)

	feed(t, r, []event{{1, 0, 10}, {6, 2, 5}, {7, 9, 10}, {0, 10, 11}})

	lines := r.Drain()
	require.Len(t, lines, 1)
	assert.Equal(t, []types.Section{{Start: 0, End: 10, PatternID: 1}}, lines[0].Sections)
}

func TestResolver_OrderIndependent(t *testing.T) {
	// "v1.2 at 10.0.0.1" style overlaps: VN, DEC, IP and NW runs.
	text := "v1.2 at 10.0.0.1\n"
	events := []event{
		{5, 0, 4},   // v1.2
		{6, 1, 4},   // 1.2
		{7, 4, 5},   // " "
		{7, 7, 8},   // " "
		{2, 8, 16},  // 10.0.0.1
		{6, 8, 12},  // 10.0
		{6, 13, 16}, // 0.1
	}
	expected := []types.Section{
		{Start: 0, End: 4, PatternID: 5},
		{Start: 4, End: 5, PatternID: 7},
		{Start: 7, End: 8, PatternID: 7},
		{Start: 8, End: 16, PatternID: 2},
	}

	for _, order := range permutations(events) {
		r := New(0, DefaultPolicy())
		r.Reset([]byte(text), 0)

		feed(t, r, order)
		feed(t, r, []event{{0, 16, 17}})

		lines := r.Drain()
		require.Len(t, lines, 1)
		require.Equal(t, expected, lines[0].Sections, "order %v", order)
	}
}

func TestResolver_PartialOverlapLowerIDKeepsSharedBytes(t *testing.T) {
	tests := []struct {
		name     string
		events   []event
		expected []types.Section
	}{
		{
			name:   "later candidate has the lower id",
			events: []event{{7, 0, 3}, {4, 2, 6}},
			expected: []types.Section{
				{Start: 0, End: 2, PatternID: 7},
				{Start: 2, End: 6, PatternID: 4},
			},
		},
		{
			name:   "earlier candidate has the lower id",
			events: []event{{4, 0, 3}, {7, 2, 6}},
			expected: []types.Section{
				{Start: 0, End: 3, PatternID: 4},
				{Start: 3, End: 6, PatternID: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(0, DefaultPolicy())
			r.Reset([]byte("abcdef\n"), 0)

			feed(t, r, tt.events)
			feed(t, r, []event{{0, 6, 7}})

			lines := r.Drain()
			require.Len(t, lines, 1)
			assert.Equal(t, tt.expected, lines[0].Sections)
		})
	}
}

func TestResolver_BareLineEmittedByDefault(t *testing.T) {
	r := New(0, DefaultPolicy())
	r.Reset([]byte("abc\n"), 0)

	feed(t, r, []event{{0, 3, 4}})

	lines := r.Drain()
	require.Len(t, lines, 1)
	assert.Equal(t, "abc", string(lines[0].Text))
	assert.Empty(t, lines[0].Sections)
}

func TestResolver_BareLineSkipped(t *testing.T) {
	r := New(0, Policy{EmitBareLines: false})
	r.Reset([]byte("abc\nx.y\n"), 0)

	feed(t, r, []event{{0, 3, 4}, {7, 5, 6}, {0, 7, 8}})

	lines := r.Drain()
	require.Len(t, lines, 1)
	assert.Equal(t, "x.y", string(lines[0].Text))
	assert.Equal(t, int64(2), lines[0].Number, "skipped lines still count")
	assert.Equal(t, r.Lines(), int64(2))
}

func TestResolver_TrailingFragment(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   int
	}{
		{name: "dropped by default", policy: DefaultPolicy(), want: 0},
		{name: "flushed when enabled", policy: Policy{EmitBareLines: true, FlushTrailing: true}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(0, tt.policy)
			r.Reset([]byte("a-b"), 0)

			feed(t, r, []event{{7, 1, 2}})
			r.Flush()

			lines := r.Drain()
			require.Len(t, lines, tt.want)
			if tt.want == 1 {
				assert.Equal(t, "a-b", string(lines[0].Text))
				assert.Equal(t, []types.Section{{Start: 1, End: 2, PatternID: 7}}, lines[0].Sections)
			}
			assert.Empty(t, r.Candidates())
		})
	}
}

func TestResolver_FlushWithoutPendingBytes(t *testing.T) {
	r := New(0, Policy{EmitBareLines: true, FlushTrailing: true})
	r.Reset([]byte("abc\n"), 0)

	feed(t, r, []event{{0, 3, 4}})
	r.Flush()

	assert.Len(t, r.Drain(), 1)
}

func TestResolver_SectionsClampedToText(t *testing.T) {
	// A non-word run that swallowed the terminator.
	r := New(0, DefaultPolicy())
	r.Reset([]byte("ab..\r\n"), 0)

	feed(t, r, []event{{7, 2, 6}, {0, 4, 6}})

	lines := r.Drain()
	require.Len(t, lines, 1)
	assert.Equal(t, "ab..", string(lines[0].Text))
	assert.Equal(t, []types.Section{{Start: 2, End: 4, PatternID: 7}}, lines[0].Sections)
}

func TestResolver_EventsBeforeLineStartAreClipped(t *testing.T) {
	r := New(0, DefaultPolicy())
	r.Reset([]byte("a.\n.b\n"), 0)

	feed(t, r, []event{{7, 1, 2}, {0, 2, 3}})
	// A run that started on the previous line.
	feed(t, r, []event{{7, 1, 4}, {7, 1, 3}, {0, 5, 6}})

	lines := r.Drain()
	require.Len(t, lines, 2)
	assert.Equal(t, []types.Section{{Start: 1, End: 2, PatternID: 7}}, lines[0].Sections)
	assert.Equal(t, []types.Section{{Start: 0, End: 1, PatternID: 7}}, lines[1].Sections)
}

func TestResolver_CandidateTracking(t *testing.T) {
	r := New(0, DefaultPolicy())
	r.Reset([]byte("x 12\n"), 0)

	feed(t, r, []event{{7, 1, 2}, {6, 2, 4}, {5, 2, 3}})

	assert.Equal(t, map[int]Candidate{
		1: {End: 2, PatternID: 7},
		2: {End: 4, PatternID: 6},
	}, r.Candidates())

	feed(t, r, []event{{0, 4, 5}})
	assert.Empty(t, r.Candidates())
	assert.Equal(t, 5, r.LineStart())
}

func TestResolver_NumbersAndOffsetsAcrossBlocks(t *testing.T) {
	r := New(0, DefaultPolicy())

	r.Reset([]byte("aa\nbb\n"), 0)
	feed(t, r, []event{{0, 2, 3}, {0, 5, 6}})
	first := r.Drain()

	r.Reset([]byte("cc\n"), 6)
	feed(t, r, []event{{0, 2, 3}})
	second := r.Drain()

	require.Len(t, first, 2)
	require.Len(t, second, 1)
	assert.Equal(t, int64(1), first[0].Number)
	assert.Equal(t, int64(3), first[1].Offset)
	assert.Equal(t, int64(3), second[0].Number)
	assert.Equal(t, int64(6), second[0].Offset)
	assert.Equal(t, "cc", string(second[0].Text))
}

func TestResolver_TextIsCopied(t *testing.T) {
	block := []byte("abc\n")
	r := New(0, DefaultPolicy())
	r.Reset(block, 0)
	feed(t, r, []event{{0, 3, 4}})

	block[0] = 'z'

	lines := r.Drain()
	assert.Equal(t, "abc", string(lines[0].Text))
}

func TestResolver_CustomTerminatorID(t *testing.T) {
	r := New(9, DefaultPolicy())
	r.Reset([]byte("a;b;"), 0)

	feed(t, r, []event{{0, 0, 1}, {9, 1, 2}, {9, 3, 4}})

	lines := r.Drain()
	require.Len(t, lines, 2)
	assert.Equal(t, []types.Section{{Start: 0, End: 1, PatternID: 0}}, lines[0].Sections, "id 0 is an ordinary pattern here")
}

func TestSweep(t *testing.T) {
	tests := []struct {
		name       string
		candidates map[int]Candidate
		textLen    int
		expected   []types.Section
	}{
		{name: "empty", candidates: nil, textLen: 5, expected: nil},
		{
			name:       "candidate starting past the text is dropped",
			candidates: map[int]Candidate{0: {End: 2, PatternID: 6}, 5: {End: 6, PatternID: 7}},
			textLen:    5,
			expected:   []types.Section{{Start: 0, End: 2, PatternID: 6}},
		},
		{
			name:       "adjacent sections are kept",
			candidates: map[int]Candidate{0: {End: 2, PatternID: 6}, 2: {End: 3, PatternID: 7}, 3: {End: 5, PatternID: 6}},
			textLen:    5,
			expected: []types.Section{
				{Start: 0, End: 2, PatternID: 6},
				{Start: 2, End: 3, PatternID: 7},
				{Start: 3, End: 5, PatternID: 6},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sweep(tt.candidates, tt.textLen))
		})
	}
}
