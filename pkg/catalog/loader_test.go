package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog_Valid(t *testing.T) {
	loader := NewLoader()

	validYAML := `terminator: 9
patterns:
  - id: 9
    name: EOL
    pattern: '\n'
    placeholder: '<EOL>'
  - id: 1
    name: HASH
    pattern: '[0-9a-f]{40}'
    flags: [caseless]
    placeholder: '<SHA1>'
    keywords: [commit]
    examples:
      - 'commit 95D09F2B10159347EECE71399A7E2E907EA3DF4F'
`

	cat, err := loader.LoadCatalog([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, uint(9), cat.Terminator())
	require.Equal(t, 2, cat.Len())

	hash, ok := cat.Get(1)
	require.True(t, ok)
	assert.Equal(t, "HASH", hash.Name)
	assert.Equal(t, types.Caseless, hash.Flags)
	assert.Equal(t, []string{"commit"}, hash.Keywords)
	assert.NoError(t, Validate(cat))
}

func TestLoadCatalog_Errors(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name string
		yaml string
	}{
		{name: "invalid yaml", yaml: `this is not valid yaml: [[[`},
		{name: "no patterns", yaml: `patterns: []`},
		{name: "missing terminator", yaml: "patterns:\n  - id: 3\n    pattern: 'x'\n    placeholder: '<X>'\n"},
		{name: "unknown flag", yaml: "patterns:\n  - id: 0\n    pattern: '\\n'\n    flags: [extended]\n"},
		{name: "unknown base", yaml: "base: nope\npatterns: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_ExtendsDefault(t *testing.T) {
	loader := NewLoader()

	overlay := `base: default
patterns:
  - id: 6
    name: INT
    pattern: '\d+'
    placeholder: '<INT>'
  - id: 8
    name: UUID
    pattern: '[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}'
    placeholder: '<UUID>'
`

	cat, err := loader.LoadCatalog([]byte(overlay))
	require.NoError(t, err)

	assert.Equal(t, 9, cat.Len())
	assert.Equal(t, "<INT>", cat.Placeholder(6))
	assert.Equal(t, "<UUID>", cat.Placeholder(8))
	assert.Equal(t, "<TS>", cat.Placeholder(1))
}

func TestLoadCatalog_ExtendCannotMoveTerminator(t *testing.T) {
	_, err := NewLoader().LoadCatalog([]byte("base: default\nterminator: 3\npatterns: []\n"))
	assert.ErrorContains(t, err, "terminator")
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte("patterns:\n  - id: 0\n    pattern: '\\n'\n    placeholder: '<NL>'\n"), 0o644))

	cat, err := NewLoader().LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	_, err = NewLoader().LoadCatalogFile(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestLoaderWithFS(t *testing.T) {
	fsys := fstest.MapFS{
		"patterns/tiny.yml": &fstest.MapFile{Data: []byte("patterns:\n  - id: 0\n    pattern: '\\n'\n    placeholder: '<NL>'\n  - id: 1\n    pattern: '\\d+'\n    placeholder: '<N>'\n")},
		"patterns/README":   &fstest.MapFile{Data: []byte("ignored")},
	}
	loader := NewLoaderWithFS(fsys)

	names, err := loader.BuiltinNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, names)

	cat, err := loader.LoadBuiltin("tiny")
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	_, err = loader.LoadDefault()
	assert.Error(t, err)
}

func TestBuiltinNames(t *testing.T) {
	names, err := NewLoader().BuiltinNames()
	require.NoError(t, err)
	assert.Contains(t, names, DefaultName)
}
