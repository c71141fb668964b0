package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facetRows() []*shapeRow {
	return []*shapeRow{
		{ID: "a", Patterns: []string{"NW", "TS"}, Sections: 5},
		{ID: "b", Patterns: []string{"DEC", "NW"}, Sections: 2},
		{ID: "c", Sections: 0},
	}
}

func selectValue(fs *facetState, id facetID, value string) {
	for _, v := range fs.Values[id] {
		if v.Value == value {
			v.Selected = true
		}
	}
}

func TestSectionBucket(t *testing.T) {
	assert.Equal(t, "0", sectionBucket(0))
	assert.Equal(t, "1-3", sectionBucket(1))
	assert.Equal(t, "1-3", sectionBucket(3))
	assert.Equal(t, "4-9", sectionBucket(4))
	assert.Equal(t, "10+", sectionBucket(10))
}

func TestBuildFacets(t *testing.T) {
	fs := buildFacets(facetRows())

	patterns := fs.Values[facetPattern]
	require.Len(t, patterns, 3)
	assert.Equal(t, "DEC", patterns[0].Value)
	assert.Equal(t, "NW", patterns[1].Value)
	assert.Equal(t, 2, patterns[1].Count)

	buckets := fs.Values[facetSections]
	require.Len(t, buckets, 3)
	assert.Equal(t, []string{"0", "1-3", "4-9"}, []string{buckets[0].Value, buckets[1].Value, buckets[2].Value})
}

func TestFacetFiltering(t *testing.T) {
	rows := facetRows()
	fs := buildFacets(rows)

	for _, r := range rows {
		assert.True(t, fs.matchesShape(r), "no filter matches %s", r.ID)
	}
	assert.False(t, fs.hasActiveFilters())

	// Within a facet values are OR-ed
	selectValue(fs, facetPattern, "TS")
	selectValue(fs, facetPattern, "DEC")
	assert.True(t, fs.matchesShape(rows[0]))
	assert.True(t, fs.matchesShape(rows[1]))
	assert.False(t, fs.matchesShape(rows[2]))

	// Across facets they are AND-ed
	selectValue(fs, facetSections, "1-3")
	assert.False(t, fs.matchesShape(rows[0]))
	assert.True(t, fs.matchesShape(rows[1]))

	fs.updateCounts(rows)
	for _, v := range fs.Values[facetPattern] {
		if v.Value == "TS" {
			assert.Equal(t, 0, v.Count)
		}
		if v.Value == "DEC" {
			assert.Equal(t, 1, v.Count)
		}
	}

	fs.resetAll()
	assert.False(t, fs.hasActiveFilters())
}
