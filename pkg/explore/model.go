// Package explore is an interactive terminal browser for the line shapes of a
// datastore.
package explore

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/praetorian-inc/linenorm/pkg/catalog"
)

// focusedPane tracks which pane has keyboard focus.
type focusedPane int

const (
	paneFilters focusedPane = iota
	paneShapes
	paneDetails
)

// Model is the root Bubble Tea model for the explore TUI.
type Model struct {
	data    *exploreData
	filters filterPane
	shapes  shapesPane
	details detailsPane

	focus       focusedPane
	showHelp    bool
	helpOffset  int
	showFilters bool

	width  int
	height int
}

// New creates a new Model by loading the shapes of the given datastore.
// Placeholders and pattern names are taken from c.
func New(datastorePath string, c *catalog.Catalog) (Model, error) {
	data, err := loadData(datastorePath, c)
	if err != nil {
		return Model{}, err
	}
	return newModel(data), nil
}

func newModel(data *exploreData) Model {
	m := Model{
		data:        data,
		filters:     newFilterPane(buildFacets(data.shapes)),
		shapes:      newShapesPane(data.shapes),
		details:     newDetailsPane(data.catalog),
		showFilters: true,
	}
	m.setFocus(paneShapes)
	m.details.setShape(m.shapes.selectedShape())
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("linenorm explore")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.MouseMsg:
		if m.showHelp {
			return m, nil
		}
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.handleMouseClick(msg.X, msg.Y)
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			m.updateHelp(msg)
			return m, nil
		}

		// Global keys (work regardless of focus)
		switch {
		case keyMatches(msg, defaultKeys.ForceQuit), keyMatches(msg, defaultKeys.Quit):
			return m, tea.Quit
		case keyMatches(msg, defaultKeys.ToggleHelp):
			m.showHelp = true
			m.helpOffset = 0
			return m, nil
		case keyMatches(msg, defaultKeys.ToggleFilters):
			m.showFilters = !m.showFilters
			if !m.showFilters && m.focus == paneFilters {
				m.setFocus(paneShapes)
			}
			m.layout()
			return m, nil
		case keyMatches(msg, defaultKeys.FocusFilters):
			if m.showFilters {
				m.setFocus(paneFilters)
			}
			return m, nil
		case keyMatches(msg, defaultKeys.FocusShapes):
			m.setFocus(paneShapes)
			return m, nil
		case keyMatches(msg, defaultKeys.FocusDetails):
			m.setFocus(paneDetails)
			return m, nil
		case keyMatches(msg, defaultKeys.ShowTemplate):
			m.details.showTemplate = !m.details.showTemplate
			return m, nil
		}

		// Delegate to focused pane
		var cmd tea.Cmd
		switch m.focus {
		case paneFilters:
			m.filters, cmd = m.filters.Update(msg)
			m.applyFilters()
		case paneShapes:
			prev := m.shapes.selectedShape()
			m.shapes, cmd = m.shapes.Update(msg)
			if s := m.shapes.selectedShape(); s != prev {
				m.details.setShape(s)
			}
		case paneDetails:
			m.details, cmd = m.details.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m *Model) updateHelp(msg tea.KeyMsg) {
	switch {
	case keyMatches(msg, defaultKeys.Quit),
		keyMatches(msg, defaultKeys.ForceQuit),
		keyMatches(msg, defaultKeys.ToggleHelp):
		m.showHelp = false
	case keyMatches(msg, defaultKeys.Down):
		m.helpOffset++
	case keyMatches(msg, defaultKeys.Up):
		m.helpOffset = max(0, m.helpOffset-1)
	case keyMatches(msg, defaultKeys.PageDown):
		m.helpOffset += m.height / 2
	case keyMatches(msg, defaultKeys.PageUp):
		m.helpOffset = max(0, m.helpOffset-m.height/2)
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	mainContent := lipgloss.JoinVertical(lipgloss.Left, m.shapes.View(), m.details.View())
	if m.showFilters {
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.filters.View(), mainContent)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	left := statusBarStyle.Render(fmt.Sprintf(" %d shapes | %d lines | %d filtered",
		len(m.data.shapes), m.data.totalLines, len(m.shapes.rows)))

	right := fmt.Sprintf("%s:%s  %s:%s  %s:%s  %s:%s  %s:%s  %s:%s",
		helpKeyStyle.Render("j/k"), helpDescStyle.Render("nav"),
		helpKeyStyle.Render("f/d"), helpDescStyle.Render("focus"),
		helpKeyStyle.Render("s"), helpDescStyle.Render("sort"),
		helpKeyStyle.Render("t"), helpDescStyle.Render("template"),
		helpKeyStyle.Render("F7"), helpDescStyle.Render("filters"),
		helpKeyStyle.Render("?"), helpDescStyle.Render("help"),
	)

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelpOverlay() string {
	overlayWidth := m.width * 80 / 100
	overlayHeight := m.height * 80 / 100

	lines := strings.Split(defaultKeys.helpText(), "\n")
	offset := min(m.helpOffset, max(0, len(lines)-1))
	end := min(offset+max(1, overlayHeight-4), len(lines))

	box := modalStyle.
		Width(overlayWidth - 4).
		Height(overlayHeight - 2).
		Render(strings.Join(lines[offset:end], "\n"))

	overlayView := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(" Help (q to close) "), box)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlayView)
}

// layout sizes the panes: filters take the left 30% (at most 40 columns),
// shapes the top 40% of the rest and details the remainder.
func (m *Model) layout() {
	contentHeight := m.height - 2 // status bar + padding
	shapesHeight := contentHeight * 40 / 100

	dataWidth := m.width
	if m.showFilters {
		filtersWidth := min(m.width*30/100, 40)
		m.filters.setSize(filtersWidth, contentHeight)
		dataWidth -= filtersWidth
	}

	m.shapes.setSize(dataWidth, shapesHeight)
	m.details.setSize(dataWidth, contentHeight-shapesHeight)
}

func (m *Model) setFocus(p focusedPane) {
	m.filters.focused = p == paneFilters
	m.shapes.focused = p == paneShapes
	m.details.focused = p == paneDetails
	m.focus = p
}

func (m *Model) handleMouseClick(x, y int) {
	contentHeight := m.height - 2
	shapesHeight := contentHeight * 40 / 100

	filtersWidth := 0
	if m.showFilters {
		filtersWidth = min(m.width*30/100, 40)
	}

	switch {
	case x < filtersWidth && y < contentHeight:
		m.setFocus(paneFilters)
		idx := y - 2 + m.filters.offset // title + border top
		if y >= 2 && idx < len(m.filters.rows) {
			m.filters.cursor = idx
			m.filters.toggleCurrent()
			m.applyFilters()
		}
	case x >= filtersWidth && y < shapesHeight:
		m.setFocus(paneShapes)
		idx := y - 4 + m.shapes.offset // title + border top + header + separator
		if y >= 4 && idx < len(m.shapes.rows) {
			m.shapes.cursor = idx
			m.details.setShape(m.shapes.selectedShape())
		}
	case x >= filtersWidth:
		m.setFocus(paneDetails)
	}
}

func (m *Model) applyFilters() {
	if !m.filters.facets.hasActiveFilters() {
		m.shapes.setFilteredRows(append([]*shapeRow(nil), m.data.shapes...))
	} else {
		var filtered []*shapeRow
		for _, s := range m.data.shapes {
			if m.filters.facets.matchesShape(s) {
				filtered = append(filtered, s)
			}
		}
		m.shapes.setFilteredRows(filtered)
	}
	m.filters.facets.updateCounts(m.data.shapes)
	m.details.setShape(m.shapes.selectedShape())
}

// Close releases resources held by the model.
func (m *Model) Close() error {
	if m.data != nil {
		return m.data.close()
	}
	return nil
}
