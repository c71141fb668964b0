package store

import (
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, path string, source string, texts ...string) {
	t.Helper()
	s, err := New(Config{Path: path})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.AddSource(types.Source{Path: source}))
	for i, text := range texts {
		require.NoError(t, s.AddLine(source, line(int64(i+1), text)))
	}
}

func TestMerge(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	first := filepath.Join(dir, "first.db")
	second := filepath.Join(dir, "second.db")
	dest := filepath.Join(dir, "merged.db")
	seed(t, first, "a.log", "start", "stop")
	seed(t, second, "b.log", "start")

	// Act
	stats, err := Merge(MergeConfig{SourcePaths: []string{first, second, first}, DestPath: dest})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, stats.StoresProcessed)
	assert.Equal(t, 2, stats.SourcesMerged)
	assert.Equal(t, 1, stats.SourcesSkipped)
	assert.Equal(t, 3, stats.LinesMerged)

	merged, err := NewSQLite(dest)
	require.NoError(t, err)
	defer merged.Close()

	shapes, err := merged.GetShapes()
	require.NoError(t, err)
	require.Len(t, shapes, 2)
	assert.Equal(t, int64(2), shapes[0].Count)
	assert.Equal(t, "start", string(shapes[0].Example.Text))
}

func TestMerge_Errors(t *testing.T) {
	_, err := Merge(MergeConfig{DestPath: ":memory:"})
	assert.Error(t, err)

	_, err = Merge(MergeConfig{SourcePaths: []string{":memory:"}})
	assert.Error(t, err)
}

func TestCopy_MemoryToMemory(t *testing.T) {
	src := NewMemory()
	require.NoError(t, src.AddSource(types.Source{Path: "-"}))
	require.NoError(t, src.AddLine("-", line(1, "x 1", types.Section{Start: 2, End: 3, PatternID: 6})))
	dest := NewMemory()

	require.NoError(t, Copy(dest, src, nil))

	lines, err := dest.GetLines("-")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "x 1", string(lines[0].Text))
}
