package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "explore",
		RunE: runExplore,
	}
	cmd.Flags().StringVar(&exploreDatastore, "datastore", "linenorm.db", "")
	cmd.Flags().StringVar(&explorePatterns, "patterns", "", "")
	return cmd
}

func TestExploreCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing datastore", args: []string{"--datastore", filepath.Join(t.TempDir(), "none.db")}, wantErr: "datastore not found"},
		{name: "memory datastore", args: []string{"--datastore", ":memory:"}, wantErr: "in-memory"},
		{name: "missing catalog", args: []string{"--patterns", filepath.Join(t.TempDir(), "none.yaml")}, wantErr: "loading patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newExploreCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestExploreCommand_Registered(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "explore" {
			found = true
		}
	}
	assert.True(t, found)
}
