package catalog

import (
	"fmt"

	"github.com/praetorian-inc/linenorm/pkg/matcher"
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// ValidatePattern checks a definition for required fields, that its rule
// compiles, and that every example matches. Rules and examples are checked
// the way the portable engine runs them: flags lifted from the rule, RE2
// semantics when the rule allows it, and examples read one rune per byte.
func ValidatePattern(d *types.PatternDefinition) error {
	if d == nil {
		return fmt.Errorf("pattern is nil")
	}
	if d.Pattern == "" {
		return fmt.Errorf("pattern %d: rule is required", d.ID)
	}
	if d.Placeholder == "" {
		return fmt.Errorf("pattern %d: placeholder is required", d.ID)
	}

	matches, err := matcher.ExampleTester(d)
	if err != nil {
		return fmt.Errorf("invalid rule for pattern %d: %w", d.ID, err)
	}

	for _, ex := range d.Examples {
		ok, err := matches(ex)
		if err != nil {
			return fmt.Errorf("pattern %d example %q: %w", d.ID, ex, err)
		}
		if !ok {
			return fmt.Errorf("pattern %d does not match its example %q", d.ID, ex)
		}
	}
	return nil
}

// Validate checks every definition of the catalog.
func Validate(c *Catalog) error {
	if c == nil {
		return fmt.Errorf("catalog is nil")
	}
	if _, ok := c.Get(c.Terminator()); !ok {
		return fmt.Errorf("terminator pattern %d: %w", c.Terminator(), ErrUnknownPattern)
	}
	for _, d := range c.Definitions() {
		if err := ValidatePattern(d); err != nil {
			return err
		}
	}
	return nil
}
