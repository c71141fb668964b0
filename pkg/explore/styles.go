package explore

import "github.com/charmbracelet/lipgloss"

var (
	colorBrand  = lipgloss.Color("#5F87D7") // slate blue
	colorOK     = lipgloss.Color("10")      // green
	colorDim    = lipgloss.Color("8")       // gray
	colorAccent = lipgloss.Color("#D7AF5F") // sand
	colorText   = lipgloss.Color("15")      // white
	colorCursor = lipgloss.Color("236")     // dark gray
)

// sectionStyles color sections by pattern id, cycling. Index 0 is the
// terminator, which never appears as a section.
var sectionStyles = func() []lipgloss.Style {
	colors := []lipgloss.Color{"8", "13", "14", "#D7AF5F", "9", "12", "10", "7"}
	styles := make([]lipgloss.Style, len(colors))
	for i, c := range colors {
		styles[i] = lipgloss.NewStyle().Bold(true).Foreground(c)
	}
	return styles
}()

func sectionStyle(id uint) lipgloss.Style {
	return sectionStyles[int(id%uint(len(sectionStyles)))]
}

var (
	paneBorder          = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	activeBorderStyle   = paneBorder.BorderForeground(colorBrand)
	inactiveBorderStyle = paneBorder.BorderForeground(colorDim)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorBrand).Padding(0, 1)
	modalStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(colorBrand).Padding(1, 2)

	selectedRowStyle = lipgloss.NewStyle().Background(colorCursor).Foreground(colorText)
	headerRowStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	placeholderStyle = lipgloss.NewStyle().Foreground(colorDim)
	statusBarStyle   = lipgloss.NewStyle().Foreground(colorDim)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorDim)

	facetLabelStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	facetSelectedStyle = lipgloss.NewStyle().Foreground(colorOK)
	facetCountStyle    = lipgloss.NewStyle().Foreground(colorDim)

	fieldLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	fieldValueStyle = lipgloss.NewStyle().Foreground(colorText)
)
