// Package prefilter skips patterns whose literal keywords do not occur in a block.
package prefilter

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// Prefilter uses Aho-Corasick for efficient keyword matching.
type Prefilter struct {
	matcher           *ahocorasick.Matcher
	keywords          []string                             // keyword at each index
	keywordPatterns   map[string][]*types.PatternDefinition // keyword -> patterns needing it
	noKeywordPatterns []*types.PatternDefinition            // patterns without keywords (always checked)
}

// New creates a prefilter from pattern definitions.
func New(patterns []*types.PatternDefinition) *Prefilter {
	pf := &Prefilter{
		keywordPatterns:   make(map[string][]*types.PatternDefinition),
		noKeywordPatterns: make([]*types.PatternDefinition, 0),
	}

	keywordSet := make(map[string]bool)
	for _, p := range patterns {
		if len(p.Keywords) == 0 {
			pf.noKeywordPatterns = append(pf.noKeywordPatterns, p)
			continue
		}
		for _, keyword := range p.Keywords {
			if !keywordSet[keyword] {
				keywordSet[keyword] = true
				pf.keywords = append(pf.keywords, keyword)
			}
			pf.keywordPatterns[keyword] = append(pf.keywordPatterns[keyword], p)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Keywords returns the distinct keywords known to the prefilter.
func (pf *Prefilter) Keywords() []string {
	return append([]string(nil), pf.keywords...)
}

// Filter returns patterns that might match content (keywords found OR no keywords defined).
// Order follows the input given to New for patterns without keywords, then keyword hit order.
func (pf *Prefilter) Filter(content []byte) []*types.PatternDefinition {
	result := make([]*types.PatternDefinition, 0, len(pf.noKeywordPatterns))
	result = append(result, pf.noKeywordPatterns...)

	if pf.matcher == nil {
		return result
	}

	hits := pf.matcher.Match(content)

	seen := make(map[*types.PatternDefinition]bool)
	for _, p := range pf.noKeywordPatterns {
		seen[p] = true
	}

	for _, hit := range hits {
		keyword := pf.keywords[hit]
		for _, p := range pf.keywordPatterns[keyword] {
			if !seen[p] {
				seen[p] = true
				result = append(result, p)
			}
		}
	}

	return result
}
