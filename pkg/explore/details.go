package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/praetorian-inc/linenorm/pkg/catalog"
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// detailsPane shows the example line of the selected shape.
type detailsPane struct {
	catalog      *catalog.Catalog
	shape        *shapeRow
	showTemplate bool
	width        int
	height       int
	offset       int // scroll offset for content
	focused      bool
}

func newDetailsPane(c *catalog.Catalog) detailsPane {
	return detailsPane{catalog: c}
}

func (dp *detailsPane) setShape(s *shapeRow) {
	dp.shape = s
	dp.offset = 0
}

func (dp detailsPane) Update(msg tea.Msg) (detailsPane, tea.Cmd) {
	if !dp.focused {
		return dp, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case keyMatches(msg, defaultKeys.Up):
			if dp.offset > 0 {
				dp.offset--
			}
		case keyMatches(msg, defaultKeys.Down):
			dp.offset++
		case keyMatches(msg, defaultKeys.Home):
			dp.offset = 0
		case keyMatches(msg, defaultKeys.PageDown):
			dp.offset += dp.visibleRows()
		case keyMatches(msg, defaultKeys.PageUp):
			dp.offset = max(0, dp.offset-dp.visibleRows())
		}
	}

	return dp, nil
}

// lines renders the pane content before scrolling.
func (dp detailsPane) lines(contentWidth int) []string {
	if dp.shape == nil {
		return []string{"  No shape selected"}
	}
	s := dp.shape

	field := func(label, value string) string {
		return fmt.Sprintf("  %s %s", fieldLabelStyle.Render(label), fieldValueStyle.Render(value))
	}

	lines := []string{
		field("Shape:", s.ID),
		field("Lines:", fmt.Sprintf("%d (%.1f%%)", s.Count, s.Share*100)),
	}
	if len(s.Patterns) > 0 {
		lines = append(lines, field("Patterns:", strings.Join(s.Patterns, ", ")))
	}
	if s.Example == nil {
		return append(lines, "", "  No example stored")
	}

	lines = append(lines,
		field("Example:", fmt.Sprintf("line %d, offset %d", s.Example.Number, s.Example.Offset)),
		"",
	)

	label := "Example:"
	text := highlightLine(s.Example, nil)
	if dp.showTemplate {
		label = "Template:"
		text = highlightLine(s.Example, dp.catalog.Placeholder)
	}
	lines = append(lines, "  "+fieldLabelStyle.Render(label))
	for _, l := range wrap(text, contentWidth-4) {
		lines = append(lines, "    "+l)
	}

	if len(s.Example.Sections) > 0 {
		lines = append(lines, "", "  "+headerRowStyle.Render("Sections"))
		lines = append(lines, "  "+strings.Repeat("─", min(40, contentWidth-4)))
		for _, sec := range s.Example.Sections {
			lines = append(lines, fmt.Sprintf("    %5d-%-5d %-6s %s",
				sec.Start, sec.End,
				patternName(dp.catalog, sec.PatternID),
				sectionStyle(sec.PatternID).Render(truncateString(string(s.Example.Text[sec.Start:sec.End]), contentWidth-24))))
		}
	}
	return lines
}

func (dp detailsPane) View() string {
	if dp.width <= 0 || dp.height <= 0 {
		return ""
	}

	contentWidth := dp.width - 4
	lines := dp.lines(contentWidth)

	offset := min(dp.offset, max(0, len(lines)-1))
	visible := lines[offset:]
	if len(visible) > dp.visibleRows() {
		visible = visible[:dp.visibleRows()]
	}

	var b strings.Builder
	for i, line := range visible {
		b.WriteString(padRight(line, contentWidth))
		if i < len(visible)-1 {
			b.WriteString("\n")
		}
	}

	return renderPane(" Details ", b.String(), dp.width, dp.height, dp.focused)
}

func (dp detailsPane) visibleRows() int {
	return max(1, dp.height-4)
}

func (dp *detailsPane) setSize(w, h int) {
	dp.width = w
	dp.height = h
}

// highlightLine styles every section of l by pattern. With a placeholder
// function the section bytes are replaced by the placeholder token.
func highlightLine(l *types.Line, placeholder func(uint) string) string {
	var b strings.Builder
	pos := 0
	for _, s := range l.Sections {
		b.Write(l.Text[pos:s.Start])
		if placeholder != nil {
			b.WriteString(placeholderStyle.Render(placeholder(s.PatternID)))
		} else {
			b.WriteString(sectionStyle(s.PatternID).Render(string(l.Text[s.Start:s.End])))
		}
		pos = s.End
	}
	b.Write(l.Text[pos:])
	return b.String()
}

// wrap splits styled text into chunks of at most width visible runes.
func wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}

	var (
		lines   []string
		current strings.Builder
		visible int
		escape  bool
	)
	for _, r := range s {
		current.WriteRune(r)
		switch {
		case r == '\033':
			escape = true
		case escape:
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				escape = false
			}
		default:
			visible++
			if visible == width {
				lines = append(lines, current.String())
				current.Reset()
				visible = 0
			}
		}
	}
	if current.Len() > 0 || len(lines) == 0 {
		lines = append(lines, current.String())
	}
	return lines
}
