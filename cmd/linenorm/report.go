package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/praetorian-inc/linenorm/pkg/store"
	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/spf13/cobra"
)

var (
	reportDatastore string
	reportPatterns  string
	reportFormat    string
	reportColor     string
	reportLimit     int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize stored line shapes",
	Long:  "Read the shapes of a datastore written by 'normalize --output' and list them, most frequent first",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "linenorm.db", "Path to datastore file or postgres:// URL")
	reportCmd.Flags().StringVar(&reportPatterns, "patterns", "", "Pattern catalog used for placeholders (default builtin)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0, "Show at most this many shapes (0 = all)")
}

// shapeRecord is the JSON form of one shape.
type shapeRecord struct {
	ID       string          `json:"id"`
	Count    int64           `json:"count"`
	Template string          `json:"template"`
	Example  string          `json:"example"`
	Sections []types.Section `json:"sections"`
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := applyConfig(cmd, "report"); err != nil {
		return err
	}

	storePath := reportDatastore
	if storePath == store.MemoryPath {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if !store.IsPostgresURL(storePath) {
		if _, err := os.Stat(storePath); err != nil {
			return fmt.Errorf("datastore not found: %s", storePath)
		}
	}

	cat, err := loadCatalog(reportPatterns, "", "")
	if err != nil {
		return err
	}

	s, err := store.New(store.Config{Path: storePath})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	shapes, err := s.GetShapes()
	if err != nil {
		return fmt.Errorf("retrieving shapes: %w", err)
	}
	if reportLimit > 0 && len(shapes) > reportLimit {
		shapes = shapes[:reportLimit]
	}

	switch reportFormat {
	case "json":
		return outputReportJSON(cmd, shapes, cat.Placeholder)
	case "human":
		useColor, err := colorEnabled(reportColor, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return outputReportHuman(cmd, shapes, cat.Placeholder, newPalette(useColor))
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func outputReportJSON(cmd *cobra.Command, shapes []*types.Shape, placeholder func(uint) string) error {
	records := make([]shapeRecord, 0, len(shapes))
	for _, sh := range shapes {
		rec := shapeRecord{ID: sh.ID.Hex(), Count: sh.Count, Sections: []types.Section{}}
		if sh.Example != nil {
			rec.Template = sh.Example.Template(placeholder)
			rec.Example = string(sh.Example.Text)
			if sh.Example.Sections != nil {
				rec.Sections = sh.Example.Sections
			}
		}
		records = append(records, rec)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

func outputReportHuman(cmd *cobra.Command, shapes []*types.Shape, placeholder func(uint) string, p *palette) error {
	out := cmd.OutOrStdout()

	var total int64
	for _, sh := range shapes {
		total += sh.Count
	}
	fmt.Fprintf(out, "%s %d shapes, %d lines\n\n", p.plain.Sprint("Shapes:"), len(shapes), total)

	for i, sh := range shapes {
		fmt.Fprintf(out, "%s %s\n", p.plain.Sprintf("Shape %d/%d", i+1, len(shapes)), p.dim.Sprint(sh.ID.Hex()[:12]))
		fmt.Fprintf(out, "%s %d\n", p.plain.Sprint("Lines:"), sh.Count)
		if sh.Example != nil {
			fmt.Fprintf(out, "%s %s\n", p.plain.Sprint("Template:"), sh.Example.Template(placeholder))
			fmt.Fprintf(out, "%s %s\n", p.plain.Sprint("Example:"), p.highlight(sh.Example))
		}
		fmt.Fprintln(out)
	}
	return nil
}
