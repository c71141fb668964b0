package prefilter

import (
	"testing"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefilter_PatternsWithMatchingKeywords(t *testing.T) {
	patterns := []*types.PatternDefinition{
		{ID: 3, Name: "B64", Pattern: `;base64,[A-Za-z0-9+/=]+`, Keywords: []string{";base64,"}},
		{ID: 8, Name: "UUID", Pattern: `uuid=[0-9a-f-]{36}`, Keywords: []string{"uuid="}},
	}

	pf := New(patterns)
	content := []byte(`<img src="data:image/png;base64,SGVsbG8=">`)

	filtered := pf.Filter(content)

	require.Len(t, filtered, 1)
	assert.Equal(t, uint(3), filtered[0].ID)
}

func TestPrefilter_PatternsWithoutKeywords(t *testing.T) {
	patterns := []*types.PatternDefinition{
		{ID: 6, Name: "DEC", Pattern: `\d+(\.\d+)?`},
		{ID: 7, Name: "NW", Pattern: `\W+`},
	}

	pf := New(patterns)

	filtered := pf.Filter([]byte("no digits here"))

	require.Len(t, filtered, 2, "patterns without keywords are always checked")
	assert.Empty(t, pf.Keywords())
}

func TestPrefilter_Mixed(t *testing.T) {
	b64 := &types.PatternDefinition{ID: 3, Keywords: []string{";base64,"}}
	dec := &types.PatternDefinition{ID: 6}
	patterns := []*types.PatternDefinition{b64, dec}

	pf := New(patterns)

	assert.Equal(t, []*types.PatternDefinition{dec}, pf.Filter([]byte("plain 42")))
	assert.Equal(t, []*types.PatternDefinition{dec, b64}, pf.Filter([]byte("x;base64,AAAA 42")))
}

func TestPrefilter_SharedKeyword(t *testing.T) {
	a := &types.PatternDefinition{ID: 1, Keywords: []string{"GET ", "POST "}}
	b := &types.PatternDefinition{ID: 2, Keywords: []string{"POST "}}

	pf := New([]*types.PatternDefinition{a, b})

	filtered := pf.Filter([]byte("POST /api GET /x"))

	assert.Len(t, filtered, 2, "each pattern is returned once")
	assert.ElementsMatch(t, []string{"GET ", "POST "}, pf.Keywords())
}

func TestPrefilter_Empty(t *testing.T) {
	pf := New(nil)

	assert.Empty(t, pf.Filter([]byte("anything")))
}
