package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/praetorian-inc/linenorm/pkg/catalog"
	"github.com/praetorian-inc/linenorm/pkg/matcher"
	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/spf13/cobra"
)

var (
	patternsPath   string
	patternsFormat string
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Manage normalization patterns",
	Long:  "Commands for listing and validating the pattern catalog",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patterns",
	Long:  "Display the patterns of the catalog in priority order",
	RunE:  runPatternsList,
}

var patternsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a pattern catalog",
	Long:  "Check that every pattern compiles, matches its examples, and that the catalog builds a matcher",
	RunE:  runPatternsValidate,
}

func init() {
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsValidateCmd)
	patternsCmd.PersistentFlags().StringVar(&patternsPath, "patterns", "", "Path to a custom pattern catalog (YAML)")
	patternsListCmd.Flags().StringVar(&patternsFormat, "format", "table", "Output format: table, json")
}

// patternRecord is the JSON form of one pattern.
type patternRecord struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Pattern     string   `json:"pattern"`
	Flags       []string `json:"flags,omitempty"`
	Placeholder string   `json:"placeholder"`
	Description string   `json:"description,omitempty"`
	Terminator  bool     `json:"terminator,omitempty"`
}

func runPatternsList(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(patternsPath, "", "")
	if err != nil {
		return err
	}

	switch patternsFormat {
	case "json":
		return outputPatternsJSON(cmd, c)
	case "table":
		return outputPatternsTable(cmd, c)
	default:
		return fmt.Errorf("unknown output format: %s", patternsFormat)
	}
}

func runPatternsValidate(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(patternsPath, "", "")
	if err != nil {
		return err
	}
	if err := catalog.Validate(c); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	m, err := matcher.Compile(matcher.Config{
		Patterns: c.Definitions(),
		Boundary: c.Terminator(),
	})
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	m.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "%d patterns OK (engine: %s)\n", c.Len(), matcher.EngineInfo())
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func outputPatternsJSON(cmd *cobra.Command, c *catalog.Catalog) error {
	records := make([]patternRecord, 0, c.Len())
	for _, d := range c.Definitions() {
		records = append(records, patternRecord{
			ID:          d.ID,
			Name:        d.Name,
			Pattern:     d.Pattern,
			Flags:       d.Flags.Names(),
			Placeholder: d.Placeholder,
			Description: d.Description,
			Terminator:  d.ID == c.Terminator(),
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

func outputPatternsTable(cmd *cobra.Command, c *catalog.Catalog) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tPlaceholder\tFlags\tDescription\n")
	fmt.Fprintf(w, "--\t----\t-----------\t-----\t-----------\n")

	for _, d := range c.Definitions() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Placeholder, flagList(d.Flags), d.Description)
	}
	return nil
}

func flagList(f types.PatternFlag) string {
	names := f.Names()
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
