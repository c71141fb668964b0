package explore

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// sortField defines which column to sort by.
type sortField int

const (
	sortByCount sortField = iota
	sortBySections
	sortByTemplate
	sortFieldCount // sentinel
)

var sortFieldNames = [sortFieldCount]string{
	"Lines", "Sections", "Template",
}

// shapesPane is the top-right shapes table.
type shapesPane struct {
	listCursor
	rows     []*shapeRow // filtered rows
	allRows  []*shapeRow // all rows (unfiltered)
	width    int
	height   int
	focused  bool
	sortBy   sortField
	reversed bool
}

func newShapesPane(rows []*shapeRow) shapesPane {
	sp := shapesPane{
		allRows: rows,
		rows:    slices.Clone(rows),
	}
	sp.sort()
	return sp
}

func (sp *shapesPane) setFilteredRows(rows []*shapeRow) {
	sp.rows = rows
	sp.sort()
	sp.clamp(len(sp.rows), sp.visibleRows())
}

func (sp shapesPane) selectedShape() *shapeRow {
	if sp.cursor < 0 || sp.cursor >= len(sp.rows) {
		return nil
	}
	return sp.rows[sp.cursor]
}

func (sp shapesPane) Update(msg tea.Msg) (shapesPane, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !sp.focused || !ok {
		return sp, nil
	}
	if sp.navigate(keyMsg, len(sp.rows), sp.visibleRows()) {
		return sp, nil
	}

	switch {
	case keyMatches(keyMsg, defaultKeys.SortNext):
		sp.sortBy = (sp.sortBy + 1) % sortFieldCount
		sp.sort()
	case keyMatches(keyMsg, defaultKeys.SortReverse):
		sp.reversed = !sp.reversed
		sp.sort()
	}
	return sp, nil
}

// sort orders rows by the sort field. Counts sort descending by default,
// templates ascending; ties fall back to the shape id.
func (sp *shapesPane) sort() {
	slices.SortStableFunc(sp.rows, func(a, b *shapeRow) int {
		var c int
		switch sp.sortBy {
		case sortByCount:
			c = cmp.Compare(b.Count, a.Count)
		case sortBySections:
			c = cmp.Compare(b.Sections, a.Sections)
		case sortByTemplate:
			c = strings.Compare(a.Template, b.Template)
		}
		if sp.reversed {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		return c
	})
}

func (sp shapesPane) View() string {
	if sp.width <= 0 || sp.height <= 0 {
		return ""
	}

	contentWidth := sp.width - 4 // borders
	const colCount, colShare, colSections = 9, 7, 5
	colTemplate := max(10, contentWidth-colCount-colShare-colSections-4)

	var b strings.Builder

	header := fmt.Sprintf(" %*s %*s %*s %-*s",
		colCount, "Lines",
		colShare, "Share",
		colSections, "Secs",
		colTemplate, "Template",
	)
	b.WriteString(headerRowStyle.Width(contentWidth).Render(truncateString(header, contentWidth)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", contentWidth))
	b.WriteString("\n")

	start, visibleEnd := sp.window(len(sp.rows), sp.visibleRows())
	for i := start; i < visibleEnd; i++ {
		row := sp.rows[i]

		line := fmt.Sprintf(" %*d %*s %*d %s",
			colCount, row.Count,
			colShare, fmt.Sprintf("%.1f%%", row.Share*100),
			colSections, row.Sections,
			truncateString(row.Template, colTemplate),
		)
		if i == sp.cursor && sp.focused {
			line = selectedRowStyle.Width(contentWidth).Render(line)
		}

		b.WriteString(padRight(line, contentWidth))
		if i < visibleEnd-1 {
			b.WriteString("\n")
		}
	}

	sortDir := ""
	if sp.reversed {
		sortDir = " (reversed)"
	}
	title := fmt.Sprintf(" Shapes (%d/%d) [sort: %s%s] ", len(sp.rows), len(sp.allRows), sortFieldNames[sp.sortBy], sortDir)
	return renderPane(title, b.String(), sp.width, sp.height, sp.focused)
}

func (sp shapesPane) visibleRows() int {
	return max(1, sp.height-6) // title + border + header + separator
}

func (sp *shapesPane) setSize(w, h int) {
	sp.width = w
	sp.height = h
	sp.clamp(len(sp.rows), sp.visibleRows())
}
