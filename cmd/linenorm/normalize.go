package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/praetorian-inc/linenorm"
	"github.com/praetorian-inc/linenorm/pkg/block"
	"github.com/praetorian-inc/linenorm/pkg/catalog"
	"github.com/praetorian-inc/linenorm/pkg/enum"
	"github.com/praetorian-inc/linenorm/pkg/store"
	"github.com/praetorian-inc/linenorm/pkg/types"
	"github.com/spf13/cobra"
)

var (
	normalizePatterns      string
	normalizeInclude       string
	normalizeExclude       string
	normalizeBlockSize     int
	normalizeFlushTrailing bool
	normalizeSkipBare      bool
	normalizeFormat        string
	normalizeColor         string
	normalizeOutput        string
	normalizeWorkers       int
	normalizeIncremental   bool
	normalizeMaxFileSize   int64
	normalizeIncludeHidden bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [path...]",
	Short: "Normalize log lines",
	Long: `Split files, directories or standard input into lines and tag the
sections of every line that match a pattern.

With no path, or with "-", standard input is read. Directories are walked
recursively; hidden entries, binary files and .gitignore'd paths are skipped.`,
	RunE: runNormalize,
}

func init() {
	addNormalizeFlags(normalizeCmd)
}

func addNormalizeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&normalizePatterns, "patterns", "", "Path to a custom pattern catalog (YAML)")
	cmd.Flags().StringVar(&normalizeInclude, "include", "", "Include patterns whose name matches a regex (comma-separated)")
	cmd.Flags().StringVar(&normalizeExclude, "exclude", "", "Exclude patterns whose name matches a regex (comma-separated)")
	cmd.Flags().IntVar(&normalizeBlockSize, "block-size", block.DefaultSize, "Block size in bytes; also the maximum line length")
	cmd.Flags().BoolVar(&normalizeFlushTrailing, "flush-trailing", false, "Emit a final line that has no terminator")
	cmd.Flags().BoolVar(&normalizeSkipBare, "skip-bare", false, "Omit lines without any section")
	cmd.Flags().StringVar(&normalizeFormat, "format", "human", "Output format: human, json")
	cmd.Flags().StringVar(&normalizeColor, "color", "auto", "Color output: auto, always, never")
	cmd.Flags().StringVar(&normalizeOutput, "output", "", "Store lines and shapes in a database (SQLite path or postgres:// URL)")
	cmd.Flags().IntVar(&normalizeWorkers, "workers", 0, "Number of concurrent normalizers (0 = one per CPU)")
	cmd.Flags().BoolVar(&normalizeIncremental, "incremental", false, "Skip sources already present in --output")
	cmd.Flags().Int64Var(&normalizeMaxFileSize, "max-file-size", 0, "Skip files larger than this many bytes (0 = no limit)")
	cmd.Flags().BoolVar(&normalizeIncludeHidden, "include-hidden", false, "Include hidden files and directories")
}

// normalizeStats counts what a run produced.
type normalizeStats struct {
	mu       sync.Mutex
	sources  int
	skipped  int
	lines    int
	sections int
}

func (s *normalizeStats) add(lines []linenorm.Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines += len(lines)
	for i := range lines {
		s.sections += len(lines[i].Sections)
	}
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if err := applyConfig(cmd, "normalize"); err != nil {
		return err
	}

	if normalizeFormat != "human" && normalizeFormat != "json" {
		return fmt.Errorf("unknown output format: %s", normalizeFormat)
	}
	if normalizeIncremental && normalizeOutput == "" {
		return fmt.Errorf("--incremental requires --output")
	}

	out := cmd.OutOrStdout()
	useColor, err := colorEnabled(normalizeColor, out)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(normalizePatterns, normalizeInclude, normalizeExclude)
	if err != nil {
		return err
	}

	workers := normalizeWorkers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	pool, err := newNormalizerPool(workers, cat)
	if err != nil {
		return err
	}
	defer pool.close()

	var st store.Store
	if normalizeOutput != "" {
		st, err = store.New(store.Config{Path: normalizeOutput})
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		defer st.Close()
	}

	enumerator, err := createEnumerator(args, workers)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := &linePrinter{
		w:           out,
		json:        normalizeFormat == "json",
		palette:     newPalette(useColor),
		placeholder: cat.Placeholder,
	}
	stats := &normalizeStats{}
	start := time.Now()

	err = enumerator.Enumerate(ctx, func(src types.Source) error {
		if normalizeIncremental {
			exists, err := st.SourceExists(src.Path)
			if err != nil {
				return fmt.Errorf("checking source: %w", err)
			}
			if exists {
				logger.Debug("skipping known source", "source", src.Path)
				stats.mu.Lock()
				stats.skipped++
				stats.mu.Unlock()
				return nil
			}
		}

		if err := normalizeSource(ctx, cmd, pool, st, p, stats, src); err != nil {
			return fmt.Errorf("normalizing %s: %w", displayName(src), err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !quiet {
		elapsed := time.Since(start)
		rate := float64(stats.lines) / elapsed.Seconds()
		fmt.Fprintf(cmd.ErrOrStderr(), "Normalized %d lines (%d sections) from %d sources in %s (%.0f lines/s)\n",
			stats.lines, stats.sections, stats.sources, elapsed.Round(time.Millisecond), rate)
		if stats.skipped > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d already stored sources\n", stats.skipped)
		}
	}
	return nil
}

func normalizeSource(ctx context.Context, cmd *cobra.Command, pool *normalizerPool, st store.Store, p *linePrinter, stats *normalizeStats, src types.Source) error {
	var r io.Reader
	if src.Kind() == "stdin" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(src.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	n := pool.get()
	defer pool.put(n)

	err := n.Stream(ctx, r, func(lines []linenorm.Line) error {
		if err := p.print(src, lines); err != nil {
			return err
		}
		if st != nil {
			ptrs := make([]*types.Line, len(lines))
			for i := range lines {
				ptrs[i] = &lines[i]
			}
			if err := st.AddLines(src.Path, ptrs); err != nil {
				return fmt.Errorf("storing lines: %w", err)
			}
		}
		stats.add(lines)
		return nil
	})
	if err != nil {
		return err
	}

	// The source row marks the lines as complete for --incremental.
	if st != nil {
		if err := st.AddSource(src); err != nil {
			return fmt.Errorf("storing source: %w", err)
		}
	}

	stats.mu.Lock()
	stats.sources++
	stats.mu.Unlock()
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// normalizerPool hands out one Normalizer per concurrent source.
type normalizerPool struct {
	all  []*linenorm.Normalizer
	free chan *linenorm.Normalizer
}

func newNormalizerPool(size int, cat *catalog.Catalog) (*normalizerPool, error) {
	opts := []linenorm.Option{
		linenorm.WithCatalog(cat),
		linenorm.WithBlockSize(normalizeBlockSize),
		linenorm.WithLogger(logger),
	}
	if normalizeFlushTrailing {
		opts = append(opts, linenorm.WithFlushTrailing())
	}
	if normalizeSkipBare {
		opts = append(opts, linenorm.WithoutBareLines())
	}

	p := &normalizerPool{free: make(chan *linenorm.Normalizer, size)}
	for i := 0; i < size; i++ {
		n, err := linenorm.New(opts...)
		if err != nil {
			p.close()
			return nil, fmt.Errorf("creating normalizer: %w", err)
		}
		if err := n.Compile(); err != nil {
			p.close()
			return nil, err
		}
		p.all = append(p.all, n)
		p.free <- n
	}
	return p, nil
}

func (p *normalizerPool) get() *linenorm.Normalizer {
	return <-p.free
}

func (p *normalizerPool) put(n *linenorm.Normalizer) {
	p.free <- n
}

func (p *normalizerPool) close() {
	for _, n := range p.all {
		n.Close()
	}
}

func createEnumerator(args []string, workers int) (enum.Enumerator, error) {
	if len(args) == 0 {
		return enum.StdinEnumerator{}, nil
	}

	var enumerators []enum.Enumerator
	for _, arg := range args {
		if arg == "-" {
			enumerators = append(enumerators, enum.StdinEnumerator{})
			continue
		}
		if _, err := os.Stat(arg); err != nil {
			return nil, fmt.Errorf("target does not exist: %s", arg)
		}
		enumerators = append(enumerators, enum.NewFilesystemEnumerator(enum.Config{
			Root:          arg,
			IncludeHidden: normalizeIncludeHidden,
			MaxFileSize:   normalizeMaxFileSize,
			Workers:       workers,
		}))
	}
	return enum.NewCombinedEnumerator(enumerators...), nil
}

func displayName(src types.Source) string {
	if src.Kind() == "stdin" {
		return "<stdin>"
	}
	return src.Path
}

// lineRecord is the JSON Lines form of one normalized line. Raw carries the
// exact bytes, base64 encoded, of a line that is not valid UTF-8.
type lineRecord struct {
	Source   string             `json:"source"`
	Number   int64              `json:"number"`
	Offset   int64              `json:"offset"`
	Text     string             `json:"text"`
	Raw      []byte             `json:"raw,omitempty"`
	Template string             `json:"template"`
	Shape    string             `json:"shape"`
	Sections []linenorm.Section `json:"sections"`
}

// linePrinter serializes output of concurrently normalized sources.
type linePrinter struct {
	mu          sync.Mutex
	w           io.Writer
	json        bool
	palette     *palette
	placeholder func(id uint) string
}

func (p *linePrinter) print(src types.Source, lines []linenorm.Line) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := displayName(src)
	if p.json {
		enc := json.NewEncoder(p.w)
		for i := range lines {
			l := &lines[i]
			sections := l.Sections
			if sections == nil {
				sections = []linenorm.Section{}
			}
			var raw []byte
			if !utf8.Valid(l.Text) {
				raw = l.Text
			}
			rec := lineRecord{
				Source:   name,
				Number:   l.Number,
				Offset:   l.Offset,
				Text:     string(l.Text),
				Raw:      raw,
				Template: l.Template(p.placeholder),
				Shape:    l.Shape().Hex(),
				Sections: sections,
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range lines {
		l := &lines[i]
		if _, err := fmt.Fprintf(p.w, "%s:%s %s\n", p.palette.dim.Sprint(name), p.palette.plain.Sprintf("%d:", l.Number), p.palette.highlight(l)); err != nil {
			return err
		}
	}
	return nil
}
