package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/linenorm"
	"github.com/praetorian-inc/linenorm/pkg/block"
	"github.com/praetorian-inc/linenorm/pkg/serve"
	"github.com/spf13/cobra"
)

var (
	servePatterns  string
	serveBlockSize int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming NDJSON normalization server",
	Long: `Run linenorm as a long-lived server that accepts normalize requests
via stdin and writes normalized lines to stdout using NDJSON format.

The process compiles the patterns once at startup and processes requests
until stdin closes or SIGTERM is received. A trailing line without a
terminator is normalized too.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePatterns, "patterns", "", "Path to a custom pattern catalog (YAML)")
	serveCmd.Flags().IntVar(&serveBlockSize, "block-size", block.DefaultSize, "Block size in bytes; also the maximum line length")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := applyConfig(cmd, "serve"); err != nil {
		return err
	}

	cat, err := loadCatalog(servePatterns, "", "")
	if err != nil {
		return err
	}

	n, err := linenorm.New(
		linenorm.WithCatalog(cat),
		linenorm.WithBlockSize(serveBlockSize),
		linenorm.WithFlushTrailing(),
		linenorm.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer n.Close()
	if err := n.Compile(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	srv := serve.NewServer(n, cmd.InOrStdin(), cmd.OutOrStdout())
	srv.SetLogger(logger)
	return srv.Run(ctx)
}
