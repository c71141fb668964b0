package matcher

import (
	"regexp"
	"strings"
)

var inlineCommentRe = regexp.MustCompile(`\(\?#[^)]*\)`)

// stripExtendedMode rewrites a free-spacing (?x) rule into its compact form:
// the flag and (?# ... ) comments are removed, as is unescaped whitespace
// outside character classes. Hyperscan has no extended flag.
func stripExtendedMode(pattern string) string {
	trimmed := strings.TrimSpace(pattern)
	if !strings.HasPrefix(trimmed, "(?x)") {
		return pattern
	}

	body := strings.TrimPrefix(trimmed, "(?x)")
	body = inlineCommentRe.ReplaceAllString(body, "")

	var sb strings.Builder
	sb.Grow(len(body))
	escaped := false
	inClass := false
	for _, c := range body {
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case !inClass && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
