package explore

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestListCursor_Navigate(t *testing.T) {
	tests := []struct {
		name       string
		start      listCursor
		msg        tea.KeyMsg
		wantCursor int
		wantOffset int
	}{
		{name: "down scrolls into view", start: listCursor{cursor: 2}, msg: tea.KeyMsg{Type: tea.KeyDown}, wantCursor: 3, wantOffset: 1},
		{name: "up stops at top", start: listCursor{}, msg: tea.KeyMsg{Type: tea.KeyUp}, wantCursor: 0, wantOffset: 0},
		{name: "page down stops at bottom", start: listCursor{cursor: 8, offset: 6}, msg: tea.KeyMsg{Type: tea.KeyPgDown}, wantCursor: 9, wantOffset: 7},
		{name: "end", start: listCursor{}, msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")}, wantCursor: 9, wantOffset: 7},
		{name: "home", start: listCursor{cursor: 9, offset: 7}, msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")}, wantCursor: 0, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := tt.start

			handled := lc.navigate(tt.msg, 10, 3)

			assert.True(t, handled)
			assert.Equal(t, tt.wantCursor, lc.cursor)
			assert.Equal(t, tt.wantOffset, lc.offset)
		})
	}
}

func TestListCursor_IgnoresOtherKeys(t *testing.T) {
	lc := listCursor{cursor: 1}

	assert.False(t, lc.navigate(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, 10, 3))
	assert.Equal(t, 1, lc.cursor)
}

func TestListCursor_Window(t *testing.T) {
	start, end := listCursor{offset: 8}.window(10, 5)

	assert.Equal(t, 8, start)
	assert.Equal(t, 10, end)
}

func TestHelpText_ListsBindings(t *testing.T) {
	text := defaultKeys.helpText()

	assert.Contains(t, text, "NAVIGATION")
	assert.Contains(t, text, "reverse sort order")
	assert.Contains(t, text, "Ctrl+r")
}
