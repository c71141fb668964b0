package matcher

import (
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// effectiveFlags merges the declared flags with inline (?i)/(?s)/(?m) groups.
func effectiveFlags(def *types.PatternDefinition) types.PatternFlag {
	flags := def.Flags
	if hasFlag(def.Pattern, 'i') {
		flags |= types.Caseless
	}
	if hasFlag(def.Pattern, 's') {
		flags |= types.DotAll
	}
	if hasFlag(def.Pattern, 'm') {
		flags |= types.MultiLine
	}
	return flags
}

// hasFlag checks for an inline flag group such as (?i) or (?is:...).
func hasFlag(pattern string, flag byte) bool {
	for i := 0; i < len(pattern)-2; i++ {
		if pattern[i] != '(' || pattern[i+1] != '?' {
			continue
		}
		if i > 0 && pattern[i-1] == '\\' {
			continue
		}
		for j := i + 2; j < len(pattern); j++ {
			c := pattern[j]
			if c == ')' || c == ':' || c == '!' || c == '=' || c == '<' || c == '-' || c == '#' {
				break
			}
			if c == flag {
				return true
			}
		}
	}
	return false
}
