package main

import (
	"fmt"

	"github.com/praetorian-inc/linenorm/pkg/store"
	"github.com/spf13/cobra"
)

var (
	mergeOutput string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <source1.db> <source2.db> [source3.db...]",
	Short: "Merge multiple linenorm databases",
	Long: `Merge multiple linenorm databases into a single output database.

This is useful for combining the shapes of logs normalized on several hosts.

Sources are keyed by path: a source already present in the output is
skipped, so re-running a merge does not count lines twice.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.db", "Output database path")
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		SourcePaths: args,
		DestPath:    mergeOutput,
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Merge complete:\n")
	fmt.Fprintf(out, "  Stores processed: %d\n", stats.StoresProcessed)
	fmt.Fprintf(out, "  Sources merged: %d\n", stats.SourcesMerged)
	fmt.Fprintf(out, "  Sources skipped: %d\n", stats.SourcesSkipped)
	fmt.Fprintf(out, "  Lines merged: %d\n", stats.LinesMerged)
	fmt.Fprintf(out, "Output: %s\n", mergeOutput)

	return nil
}
