package explore

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// listCursor is the selected row and scroll offset of a vertical list.
type listCursor struct {
	cursor int
	offset int
}

// navigate applies a navigation key to a list of n rows of which visible fit
// on screen. It reports whether msg was a navigation key.
func (lc *listCursor) navigate(msg tea.KeyMsg, n, visible int) bool {
	switch {
	case keyMatches(msg, defaultKeys.Up):
		lc.cursor--
	case keyMatches(msg, defaultKeys.Down):
		lc.cursor++
	case keyMatches(msg, defaultKeys.PageUp):
		lc.cursor -= visible
	case keyMatches(msg, defaultKeys.PageDown):
		lc.cursor += visible
	case keyMatches(msg, defaultKeys.Home):
		lc.cursor = 0
	case keyMatches(msg, defaultKeys.End):
		lc.cursor = n - 1
	default:
		return false
	}
	lc.clamp(n, visible)
	return true
}

// clamp keeps the cursor inside [0, n) and scrolls it into view.
func (lc *listCursor) clamp(n, visible int) {
	lc.cursor = max(0, min(lc.cursor, n-1))
	if lc.cursor < lc.offset {
		lc.offset = lc.cursor
	}
	if lc.cursor >= lc.offset+visible {
		lc.offset = lc.cursor - visible + 1
	}
}

// window returns the range of rows to draw.
func (lc listCursor) window(n, visible int) (start, end int) {
	return lc.offset, min(lc.offset+visible, n)
}

// renderPane draws a titled, bordered pane.
func renderPane(title, body string, width, height int, focused bool) string {
	borderStyle := inactiveBorderStyle
	if focused {
		borderStyle = activeBorderStyle
	}

	content := borderStyle.
		Width(width - 2).
		Height(height - 3).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content)
}

func keyMatches(msg tea.KeyMsg, binding key.Binding) bool {
	return key.Matches(msg, binding)
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// stripAnsi removes escape sequences so a row can be restyled.
func stripAnsi(s string) string {
	var b strings.Builder
	escape := false
	for _, r := range s {
		switch {
		case r == '\033':
			escape = true
		case escape:
			escape = !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
