package explore

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up, Down, PageUp, PageDown, Home, End key.Binding

	FocusFilters, FocusShapes, FocusDetails key.Binding

	ToggleFilter, ResetFilter key.Binding

	ShowTemplate, ToggleHelp, ToggleFilters key.Binding

	SortNext, SortReverse key.Binding

	Quit, ForceQuit key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

var defaultKeys = keyMap{
	Up:       bind("k/Up", "move cursor up", "up", "k"),
	Down:     bind("j/Down", "move cursor down", "down", "j"),
	PageUp:   bind("Ctrl+b", "page up", "pgup", "ctrl+b"),
	PageDown: bind("Ctrl+f", "page down", "pgdown", "ctrl+f"),
	Home:     bind("g", "jump to top", "home", "g"),
	End:      bind("G", "jump to bottom", "end", "G"),

	FocusFilters: bind("F1", "focus filters pane", "f1"),
	FocusShapes:  bind("f", "focus shapes pane", "f"),
	FocusDetails: bind("d", "focus details pane", "d"),

	ToggleFilter: bind("x/Space", "toggle value, collapse facet", "x", " ", "enter"),
	ResetFilter:  bind("Ctrl+r", "reset all filters", "ctrl+r"),

	ShowTemplate:  bind("t", "show example or template", "t"),
	ToggleHelp:    bind("?", "toggle this help screen", "?"),
	ToggleFilters: bind("F7", "toggle filters pane", "f7"),

	SortNext:    bind("s", "cycle sort column", "s"),
	SortReverse: bind("S", "reverse sort order", "S"),

	Quit:      bind("q", "quit", "q"),
	ForceQuit: bind("Ctrl+c", "force quit", "ctrl+c"),
}

// helpGroups orders the bindings for the help screen.
func (k keyMap) helpGroups() []struct {
	title    string
	bindings []key.Binding
} {
	return []struct {
		title    string
		bindings []key.Binding
	}{
		{"NAVIGATION", []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End}},
		{"FOCUS", []key.Binding{k.FocusFilters, k.FocusShapes, k.FocusDetails, k.ToggleFilters}},
		{"FILTERS", []key.Binding{k.ToggleFilter, k.ResetFilter}},
		{"VIEWS", []key.Binding{k.SortNext, k.SortReverse, k.ShowTemplate, k.ToggleHelp}},
		{"QUIT", []key.Binding{k.Quit, k.ForceQuit}},
	}
}

// helpText renders the help screen.
func (k keyMap) helpText() string {
	var b strings.Builder
	b.WriteString("linenorm explore - Interactive Shape Browser\n\n")
	b.WriteString("A shape groups the lines that differ only in their tagged sections.\n")
	for _, g := range k.helpGroups() {
		fmt.Fprintf(&b, "\n%s\n", g.title)
		for _, kb := range g.bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "  %-16s  %s\n", h.Key, h.Desc)
		}
	}
	return b.String()
}
