package explore

import (
	"slices"
	"sort"
)

// facetID identifies a facet category.
type facetID int

const (
	facetPattern facetID = iota
	facetSections
)

// facetDef defines a facet category and how a shape maps onto its values.
type facetDef struct {
	ID     facetID
	Label  string
	values func(s *shapeRow) []string
	// order sorts the values for display; nil sorts them lexically.
	order []string
}

var facetDefs = []facetDef{
	{
		ID:     facetPattern,
		Label:  "Pattern",
		values: func(s *shapeRow) []string { return s.Patterns },
	},
	{
		ID:     facetSections,
		Label:  "Sections",
		values: func(s *shapeRow) []string { return []string{sectionBucket(s.Sections)} },
		order:  []string{"0", "1-3", "4-9", "10+"},
	},
}

func sectionBucket(n int) string {
	switch {
	case n == 0:
		return "0"
	case n <= 3:
		return "1-3"
	case n <= 9:
		return "4-9"
	default:
		return "10+"
	}
}

// facetValue is a single selectable value within a facet.
type facetValue struct {
	FacetID  facetID
	Value    string
	Count    int
	Selected bool
}

// facetState holds the complete filter state.
type facetState struct {
	Values map[facetID][]*facetValue
}

// buildFacets collects every facet value present in the shapes.
func buildFacets(shapes []*shapeRow) *facetState {
	fs := &facetState{Values: make(map[facetID][]*facetValue)}

	for _, def := range facetDefs {
		counts := make(map[string]int)
		for _, s := range shapes {
			for _, v := range def.values(s) {
				counts[v]++
			}
		}

		values := make([]*facetValue, 0, len(counts))
		for v, c := range counts {
			values = append(values, &facetValue{FacetID: def.ID, Value: v, Count: c})
		}
		sort.Slice(values, func(i, j int) bool {
			if def.order != nil {
				return slices.Index(def.order, values[i].Value) < slices.Index(def.order, values[j].Value)
			}
			return values[i].Value < values[j].Value
		})
		fs.Values[def.ID] = values
	}
	return fs
}

// selectedValues returns the set of selected values for a facet.
func (fs *facetState) selectedValues(id facetID) map[string]bool {
	selected := make(map[string]bool)
	for _, v := range fs.Values[id] {
		if v.Selected {
			selected[v.Value] = true
		}
	}
	return selected
}

func (fs *facetState) hasActiveFilters() bool {
	for _, values := range fs.Values {
		for _, v := range values {
			if v.Selected {
				return true
			}
		}
	}
	return false
}

func (fs *facetState) resetAll() {
	for _, values := range fs.Values {
		for _, v := range values {
			v.Selected = false
		}
	}
}

// matchesShape returns true if a shape passes all active filters.
// Within a facet: OR (union). Across facets: AND (intersection).
func (fs *facetState) matchesShape(s *shapeRow) bool {
	for _, def := range facetDefs {
		selected := fs.selectedValues(def.ID)
		if len(selected) == 0 {
			continue
		}
		if !slices.ContainsFunc(def.values(s), func(v string) bool { return selected[v] }) {
			return false
		}
	}
	return true
}

// updateCounts recounts facet values over the shapes passing the filters.
func (fs *facetState) updateCounts(shapes []*shapeRow) {
	for _, def := range facetDefs {
		index := make(map[string]*facetValue)
		for _, v := range fs.Values[def.ID] {
			v.Count = 0
			index[v.Value] = v
		}
		for _, s := range shapes {
			if !fs.matchesShape(s) {
				continue
			}
			for _, value := range def.values(s) {
				if v, ok := index[value]; ok {
					v.Count++
				}
			}
		}
	}
}
