package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNames(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string returns empty slice", input: "", expected: []string{}},
		{name: "single pattern", input: "TS", expected: []string{"TS"}},
		{name: "multiple patterns comma-separated", input: "TS,IP,DEC", expected: []string{"TS", "IP", "DEC"}},
		{name: "patterns with spaces are trimmed", input: " TS , IP ,, ", expected: []string{"TS", "IP"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNames(tt.input))
		})
	}
}

func names(c *Catalog) []string {
	var out []string
	for _, d := range c.Definitions() {
		out = append(out, d.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		config   FilterConfig
		expected []string
	}{
		{name: "no filter keeps all", config: FilterConfig{}, expected: []string{"NL", "TS", "IP", "B64", "HEX", "VN", "DEC", "NW"}},
		{name: "include keeps terminator", config: FilterConfig{Include: []string{"^TS$", "^IP$"}}, expected: []string{"NL", "TS", "IP"}},
		{name: "exclude", config: FilterConfig{Exclude: []string{"^NW$", "B64"}}, expected: []string{"NL", "TS", "IP", "HEX", "VN", "DEC"}},
		{name: "exclude cannot drop terminator", config: FilterConfig{Exclude: []string{".*"}}, expected: []string{"NL"}},
		{name: "include then exclude", config: FilterConfig{Include: []string{"^(TS|IP|DEC)$"}, Exclude: []string{"IP"}}, expected: []string{"NL", "TS", "DEC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Default()
			require.NoError(t, err)

			filtered, err := Filter(cat, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(filtered))
		})
	}
}

func TestFilter_InvalidRegex(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	_, err = Filter(cat, FilterConfig{Include: []string{"("}})
	assert.Error(t, err)

	_, err = Filter(cat, FilterConfig{Exclude: []string{"["}})
	assert.Error(t, err)
}
