package enum

import (
	"context"
	"errors"
	"testing"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEnumerator is a simple Enumerator that yields a fixed set of sources.
type mockEnumerator struct {
	sources []types.Source
}

func (m *mockEnumerator) Enumerate(ctx context.Context, callback func(src types.Source) error) error {
	for _, src := range m.sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := callback(src); err != nil {
			return err
		}
	}
	return nil
}

func TestCombinedEnumerator_Empty(t *testing.T) {
	combined := NewCombinedEnumerator()

	var yielded int
	err := combined.Enumerate(context.Background(), func(types.Source) error {
		yielded++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, yielded)
}

func TestCombinedEnumerator_Deduplicates(t *testing.T) {
	// Arrange
	first := &mockEnumerator{sources: []types.Source{{Path: "logs/a.log"}, {Path: "logs/b.log"}}}
	second := &mockEnumerator{sources: []types.Source{{Path: "logs/./a.log"}, {Path: "c.log"}}}
	combined := NewCombinedEnumerator(first, second, StdinEnumerator{}, StdinEnumerator{})

	// Act
	var paths []string
	err := combined.Enumerate(context.Background(), func(src types.Source) error {
		paths = append(paths, src.Path)
		return nil
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/a.log", "logs/b.log", "c.log", "-"}, paths)
}

func TestCombinedEnumerator_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	failing := &mockEnumerator{sources: []types.Source{{Path: "a.log"}}}
	never := &mockEnumerator{sources: []types.Source{{Path: "b.log"}}}

	var seen []string
	err := NewCombinedEnumerator(failing, never).Enumerate(context.Background(), func(src types.Source) error {
		seen = append(seen, src.Path)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a.log"}, seen)
}

func TestStdinEnumerator(t *testing.T) {
	var got []types.Source
	err := StdinEnumerator{}.Enumerate(context.Background(), func(src types.Source) error {
		got = append(got, src)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "stdin", got[0].Kind())
}
