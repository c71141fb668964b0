package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// FilterConfig specifies include and exclude patterns matched against pattern names.
type FilterConfig struct {
	Include []string // Regex patterns - only matching names included
	Exclude []string // Regex patterns - matching names excluded
}

// ParseNames splits a comma-separated string into individual patterns.
// Patterns are trimmed of whitespace.
func ParseNames(names string) []string {
	if names == "" {
		return []string{}
	}

	parts := strings.Split(names, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Filter returns a new catalog holding the definitions whose names pass the
// include and exclude patterns. Include is applied first, then exclude.
// Empty include means "include all". The terminator is always kept.
func Filter(c *Catalog, config FilterConfig) (*Catalog, error) {
	includeRegexes, err := compileAll(config.Include)
	if err != nil {
		return nil, err
	}
	excludeRegexes, err := compileAll(config.Exclude)
	if err != nil {
		return nil, err
	}

	var kept []*types.PatternDefinition
	for _, d := range c.Definitions() {
		if d.ID == c.Terminator() {
			kept = append(kept, d)
			continue
		}
		if len(includeRegexes) > 0 && !matchesAny(d.Name, includeRegexes) {
			continue
		}
		if len(excludeRegexes) > 0 && matchesAny(d.Name, excludeRegexes) {
			continue
		}
		kept = append(kept, d)
	}

	return New(c.Terminator(), kept...)
}

// =============================================================================
// HELPERS
// =============================================================================

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	var regexes []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

func matchesAny(name string, regexes []*regexp.Regexp) bool {
	for _, re := range regexes {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
