package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/praetorian-inc/linenorm/pkg/explore"
	"github.com/spf13/cobra"
)

var (
	exploreDatastore string
	explorePatterns  string
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactively explore stored line shapes",
	Long: `Launch an interactive TUI to browse the shapes of a datastore written by 'normalize --output'.

Features:
  - Three-pane layout: filters, shapes table, shape details
  - Faceted search by pattern and section count
  - Toggle between the highlighted example line and its template
  - Vi-style navigation (hjkl, Ctrl-f/b, g/G)
  - Sortable shapes table`,
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().StringVar(&exploreDatastore, "datastore", "linenorm.db", "Path to datastore file or postgres:// URL")
	exploreCmd.Flags().StringVar(&explorePatterns, "patterns", "", "Pattern catalog used for placeholders (default builtin)")
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	if err := applyConfig(cmd, "explore"); err != nil {
		return err
	}

	cat, err := loadCatalog(explorePatterns, "", "")
	if err != nil {
		return err
	}

	model, err := explore.New(exploreDatastore, cat)
	if err != nil {
		return fmt.Errorf("loading datastore: %w", err)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithOutput(cmd.OutOrStdout()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explore TUI: %w", err)
	}

	return nil
}
