package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// filterPane is the left-side facet tree. Each facet is a collapsible
// heading followed by its values.
type filterPane struct {
	listCursor
	facets    *facetState
	collapsed map[facetID]bool
	rows      []filterRow
	width     int
	height    int
	focused   bool
}

// filterRow is a heading when value is nil.
type filterRow struct {
	facet facetID
	label string
	value *facetValue
}

func newFilterPane(facets *facetState) filterPane {
	fp := filterPane{
		facets:    facets,
		collapsed: make(map[facetID]bool),
	}
	fp.rebuildRows()
	return fp
}

func (fp *filterPane) rebuildRows() {
	fp.rows = nil
	for _, def := range facetDefs {
		values := fp.facets.Values[def.ID]
		if len(values) == 0 {
			continue
		}
		fp.rows = append(fp.rows, filterRow{facet: def.ID, label: def.Label})
		if fp.collapsed[def.ID] {
			continue
		}
		for _, v := range values {
			fp.rows = append(fp.rows, filterRow{facet: def.ID, label: v.Value, value: v})
		}
	}
}

func (fp filterPane) Update(msg tea.Msg) (filterPane, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !fp.focused || !ok {
		return fp, nil
	}
	if fp.navigate(keyMsg, len(fp.rows), fp.visibleRows()) {
		return fp, nil
	}

	switch {
	case keyMatches(keyMsg, defaultKeys.ToggleFilter):
		fp.toggleCurrent()
	case keyMatches(keyMsg, defaultKeys.ResetFilter):
		fp.facets.resetAll()
	}
	return fp, nil
}

// toggleCurrent collapses a heading or selects a value.
func (fp *filterPane) toggleCurrent() {
	if fp.cursor < 0 || fp.cursor >= len(fp.rows) {
		return
	}
	row := fp.rows[fp.cursor]
	if row.value != nil {
		row.value.Selected = !row.value.Selected
		return
	}

	fp.collapsed[row.facet] = !fp.collapsed[row.facet]
	fp.rebuildRows()
	for i, r := range fp.rows {
		if r.value == nil && r.facet == row.facet {
			fp.cursor = i
			break
		}
	}
	fp.clamp(len(fp.rows), fp.visibleRows())
}

func (fp filterPane) View() string {
	if fp.width <= 0 || fp.height <= 0 {
		return ""
	}

	start, end := fp.window(len(fp.rows), fp.visibleRows())
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := fp.renderRow(fp.rows[i])
		if i == fp.cursor && fp.focused {
			line = selectedRowStyle.Width(fp.width - 2).Render(stripAnsi(line))
		}
		lines = append(lines, padRight(line, fp.width-2))
	}

	return renderPane(" Filters ", strings.Join(lines, "\n"), fp.width, fp.height, fp.focused)
}

func (fp filterPane) renderRow(row filterRow) string {
	if row.value == nil {
		arrow := "▾"
		if fp.collapsed[row.facet] {
			arrow = "▸"
		}
		return facetLabelStyle.Render(fmt.Sprintf(" %s %s", arrow, row.label))
	}

	label := truncateString(row.label, fp.width-12)
	count := facetCountStyle.Render(fmt.Sprintf("(%d)", row.value.Count))
	if row.value.Selected {
		return fmt.Sprintf("   %s %s %s", facetSelectedStyle.Render("+"), facetSelectedStyle.Render(label), count)
	}
	return fmt.Sprintf("     %s %s", label, count)
}

func (fp filterPane) visibleRows() int {
	return max(1, fp.height-4) // title + border
}

func (fp *filterPane) setSize(w, h int) {
	fp.width = w
	fp.height = h
	fp.clamp(len(fp.rows), fp.visibleRows())
}
