package matcher

import (
	"errors"
	"testing"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	id         uint
	start, end uint64
}

func collect(t *testing.T, m Matcher, data string) []event {
	t.Helper()
	var events []event
	err := m.Scan([]byte(data), func(id uint, start, end uint64) error {
		events = append(events, event{id, start, end})
		return nil
	})
	require.NoError(t, err)
	return events
}

func TestPortable_KeywordPrefilter(t *testing.T) {
	defs := []*types.PatternDefinition{
		{ID: 0, Pattern: `\n`},
		{ID: 1, Pattern: `id=\d+`, Keywords: []string{"uid="}},
	}
	m, err := NewPortable(Config{Patterns: defs})
	require.NoError(t, err)

	assert.Equal(t, []event{{0, 7, 8}}, collect(t, m, "id=1234\n"), "pattern skipped when keyword is absent")
	assert.Contains(t, collect(t, m, "uid=1234\n"), event{1, 1, 8})
}

func TestPortable_SingleMatch(t *testing.T) {
	defs := []*types.PatternDefinition{
		{ID: 0, Pattern: `\n`},
		{ID: 1, Pattern: `\d`, Flags: types.SingleMatch},
	}
	m, err := NewPortable(Config{Patterns: defs})
	require.NoError(t, err)

	events := collect(t, m, "1 2\n3\n")

	count := 0
	for _, e := range events {
		if e.id == 1 {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, collect(t, m, "9\n"), 2, "single match state resets per scan")
}

func TestPortable_InlineFlags(t *testing.T) {
	defs := []*types.PatternDefinition{
		{ID: 0, Pattern: `\n`},
		{ID: 1, Pattern: `(?i)error`},
	}
	m, err := NewPortable(Config{Patterns: defs})
	require.NoError(t, err)

	assert.Contains(t, collect(t, m, "ERROR\n"), event{1, 0, 5})
}

func TestPortable_ExtendedMode(t *testing.T) {
	defs := []*types.PatternDefinition{
		{ID: 0, Pattern: `\n`},
		{ID: 1, Pattern: "(?x) \\d+ (?# digits ) [ ]ms"},
	}
	m, err := NewPortable(Config{Patterns: defs})
	require.NoError(t, err)

	assert.Contains(t, collect(t, m, "in 40 ms\n"), event{1, 3, 8})
}

func TestPortable_NoBoundary(t *testing.T) {
	defs := []*types.PatternDefinition{{ID: 6, Pattern: `\d+`}}
	m, err := NewPortable(Config{Patterns: defs, Boundary: 99})
	require.NoError(t, err)

	assert.Equal(t, []event{{6, 0, 2}, {6, 3, 5}}, collect(t, m, "12\n34"))
}

func TestPortable_HandlerErrorAborts(t *testing.T) {
	m, err := NewPortable(Config{Patterns: []*types.PatternDefinition{{ID: 0, Pattern: `\n`}}})
	require.NoError(t, err)
	stop := errors.New("stop")

	calls := 0
	err = m.Scan([]byte("a\nb\nc\n"), func(id uint, start, end uint64) error {
		calls++
		return stop
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestNewPortable_CompileErrors(t *testing.T) {
	tests := []struct {
		name      string
		patterns  []*types.PatternDefinition
		patternID uint
		named     bool
	}{
		{name: "no patterns", patterns: nil},
		{name: "nil pattern", patterns: []*types.PatternDefinition{nil}},
		{name: "malformed", patterns: []*types.PatternDefinition{{ID: 0, Pattern: `\n`}, {ID: 4, Pattern: `(\d`}}, patternID: 4, named: true},
		{name: "empty", patterns: []*types.PatternDefinition{{ID: 2, Pattern: ``}}, patternID: 2, named: true},
		{name: "duplicate", patterns: []*types.PatternDefinition{{ID: 1, Pattern: `a`}, {ID: 1, Pattern: `b`}}, patternID: 1, named: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewPortable(Config{Patterns: tt.patterns})

			assert.Nil(t, m)
			var compileErr *CompileError
			require.ErrorAs(t, err, &compileErr)
			assert.Equal(t, tt.named, compileErr.HasPattern)
			if tt.named {
				assert.Equal(t, tt.patternID, compileErr.PatternID)
			}
		})
	}
}

func TestDecodeBytes(t *testing.T) {
	runes := decodeBytes(nil, []byte{'a', 0x7f, 0xff})
	assert.Equal(t, []rune{'a', 0x7f, 0xff}, runes)

	reused := decodeBytes(runes, []byte{'b'})
	assert.Equal(t, []rune{'b'}, reused)
}
