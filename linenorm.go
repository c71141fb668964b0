// Package linenorm splits log streams into lines and tags the noisy parts of
// each line (timestamps, addresses, encoded blobs, version strings, numbers
// and punctuation runs) with the id of the pattern that matched them.
//
// Two lines that differ only inside tagged sections share a shape, which is
// what makes large logs diffable and countable.
//
// # Basic Usage
//
//	n, err := linenorm.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer n.Close()
//
//	lines, err := n.NormalizeString("12/31/1999 12:59:59 started pid 42\n")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, line := range lines {
//	    fmt.Println(line.Template(n.Placeholder))
//	}
//
// # Streaming
//
// Stream hands each block's lines to a callback and keeps nothing else, so
// inputs of any size run in memory bounded by the block size:
//
//	err := n.Stream(ctx, os.Stdin, func(lines []linenorm.Line) error {
//	    for _, line := range lines {
//	        fmt.Println(line.Number, len(line.Sections))
//	    }
//	    return nil
//	})
package linenorm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/praetorian-inc/linenorm/pkg/block"
	"github.com/praetorian-inc/linenorm/pkg/catalog"
	"github.com/praetorian-inc/linenorm/pkg/matcher"
	"github.com/praetorian-inc/linenorm/pkg/resolver"
	"github.com/praetorian-inc/linenorm/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/linenorm" without subpackages.
type (
	// Line is one normalized line with its ordered sections.
	Line = types.Line

	// Section is a tagged byte range of a line.
	Section = types.Section

	// PatternDefinition describes one pattern of the catalog.
	PatternDefinition = types.PatternDefinition

	// CompileError reports a pattern set the engine rejected.
	CompileError = matcher.CompileError

	// LineTooLongError reports a line that does not fit in one block.
	LineTooLongError = block.LineTooLongError

	// StreamError reports a failure of the input reader.
	StreamError = block.StreamError
)

var (
	// ErrScanInProgress is returned when a Normalizer is used by two runs at once.
	ErrScanInProgress = errors.New("a normalization run is already in progress")

	// ErrClosed is returned when a closed Normalizer is used.
	ErrClosed = errors.New("normalizer is closed")
)

// Normalizer turns byte streams into normalized lines.
//
// A Normalizer is single-threaded: it owns one compiled matcher and runs one
// stream at a time. Create one Normalizer per goroutine.
type Normalizer struct {
	config  *normalizerConfig
	catalog *catalog.Catalog

	mu              sync.Mutex
	running         bool
	closed          bool
	matcher         matcher.Matcher
	compiledVersion uint64
}

// normalizerConfig holds normalizer configuration.
type normalizerConfig struct {
	catalog        *catalog.Catalog
	blockSize      int
	terminatorByte byte
	policy         resolver.Policy
	logger         *log.Logger
	compile        matcher.CompileFunc
}

// Option configures a Normalizer.
type Option func(*normalizerConfig)

// WithCatalog uses a custom catalog instead of the embedded default one.
// The Normalizer keeps its own copy.
func WithCatalog(c *catalog.Catalog) Option {
	return func(cfg *normalizerConfig) {
		cfg.catalog = c
	}
}

// WithBlockSize sets the block capacity in bytes. Default is 65536.
// No line may be longer than one block.
func WithBlockSize(size int) Option {
	return func(cfg *normalizerConfig) {
		cfg.blockSize = size
	}
}

// WithTerminatorByte sets the byte the block reader splits on. Default is '\n'.
// It must be the last byte of every match of the terminator pattern.
func WithTerminatorByte(b byte) Option {
	return func(cfg *normalizerConfig) {
		cfg.terminatorByte = b
	}
}

// WithFlushTrailing emits a final line that has no terminator.
// By default such a fragment is dropped.
func WithFlushTrailing() Option {
	return func(cfg *normalizerConfig) {
		cfg.policy.FlushTrailing = true
	}
}

// WithoutBareLines drops lines on which no pattern matched.
func WithoutBareLines() Option {
	return func(cfg *normalizerConfig) {
		cfg.policy.EmitBareLines = false
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(cfg *normalizerConfig) {
		cfg.logger = logger
	}
}

// WithCompiler substitutes the engine used to compile the catalog.
// The default is matcher.Compile.
func WithCompiler(compile matcher.CompileFunc) Option {
	return func(cfg *normalizerConfig) {
		cfg.compile = compile
	}
}

// New creates a Normalizer with the given options.
//
// By default, the normalizer:
//   - Uses the embedded default catalog (terminator pattern id 0)
//   - Reads 64 KiB blocks split on '\n'
//   - Emits lines without sections and drops an unterminated trailing fragment
//
// Patterns are compiled lazily on the first run or on Compile.
func New(opts ...Option) (*Normalizer, error) {
	config := &normalizerConfig{
		blockSize:      block.DefaultSize,
		terminatorByte: block.DefaultTerminator,
		policy:         resolver.DefaultPolicy(),
		compile:        matcher.Compile,
	}

	for _, opt := range opts {
		opt(config)
	}

	if config.blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", config.blockSize)
	}
	if config.logger == nil {
		config.logger = log.New(io.Discard)
	}

	var cat *catalog.Catalog
	if config.catalog != nil {
		cat = config.catalog.Clone()
	} else {
		c, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("loading default catalog: %w", err)
		}
		cat = c
	}

	return &Normalizer{
		config:  config,
		catalog: cat,
	}, nil
}

// Compile builds the matcher for the current catalog if it is missing or stale.
// Calling it again without catalog changes does nothing.
func (n *Normalizer) Compile() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	if n.running {
		return ErrScanInProgress
	}
	return n.compileLocked()
}

func (n *Normalizer) compileLocked() error {
	version := n.catalog.Version()
	if n.matcher != nil && n.compiledVersion == version {
		return nil
	}

	if n.matcher != nil {
		if err := n.matcher.Close(); err != nil {
			n.config.logger.Warn("closing stale matcher", "err", err)
		}
		n.matcher = nil
	}

	start := time.Now()
	m, err := n.config.compile(matcher.Config{
		Patterns: n.catalog.Definitions(),
		Boundary: n.catalog.Terminator(),
	})
	if err != nil {
		return fmt.Errorf("compiling patterns: %w", err)
	}

	n.matcher = m
	n.compiledVersion = version
	n.config.logger.Debug("compiled patterns",
		"patterns", n.catalog.Len(),
		"engine", matcher.EngineInfo(),
		"elapsed", time.Since(start))
	return nil
}

// Replace inserts or overwrites the pattern stored under id.
// The next run recompiles. Edits are refused while a run is active.
func (n *Normalizer) Replace(id uint, def PatternDefinition) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return ErrScanInProgress
	}
	if err := n.catalog.Replace(id, &def); err != nil {
		return fmt.Errorf("replacing pattern %d: %w", id, err)
	}
	return nil
}

// Remove deletes the pattern stored under id. The terminator cannot be removed.
func (n *Normalizer) Remove(id uint) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return ErrScanInProgress
	}
	return n.catalog.Remove(id)
}

// Patterns returns copies of the catalog definitions ordered by id.
func (n *Normalizer) Patterns() []*PatternDefinition {
	return n.catalog.Definitions()
}

// Terminator returns the id of the line terminator pattern.
func (n *Normalizer) Terminator() uint {
	return n.catalog.Terminator()
}

// BlockSize returns the block capacity in bytes.
func (n *Normalizer) BlockSize() int {
	return n.config.blockSize
}

// Placeholder returns the placeholder token of pattern id.
// Its signature fits Line.Template.
func (n *Normalizer) Placeholder(id uint) string {
	return n.catalog.Placeholder(id)
}

// Stream normalizes r and hands the lines finished in each block to fn.
// The slice passed to fn is not reused. Cancellation is checked between blocks.
// Any error, including one returned by fn, stops the run.
func (n *Normalizer) Stream(ctx context.Context, r io.Reader, fn func([]Line) error) error {
	m, err := n.acquire()
	if err != nil {
		return err
	}
	defer n.release()

	start := time.Now()
	br := block.NewReader(r, n.config.blockSize, n.config.terminatorByte)
	res := resolver.New(n.catalog.Terminator(), n.config.policy)

	var blocks, emitted int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := br.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		blocks++

		res.Reset(data, br.Offset())
		if err := m.Scan(data, res.OnMatch); err != nil {
			return fmt.Errorf("scanning block at offset %d: %w", br.Offset(), err)
		}
		if br.Final() {
			res.Flush()
		}

		if lines := res.Drain(); len(lines) > 0 {
			emitted += int64(len(lines))
			if err := fn(lines); err != nil {
				return err
			}
		}
	}

	n.config.logger.Debug("normalized stream",
		"blocks", blocks,
		"lines", res.Lines(),
		"emitted", emitted,
		"elapsed", time.Since(start))
	return nil
}

// Normalize reads r to the end and returns every emitted line.
// On error no lines are returned.
func (n *Normalizer) Normalize(ctx context.Context, r io.Reader) ([]Line, error) {
	var lines []Line
	err := n.Stream(ctx, r, func(batch []Line) error {
		lines = append(lines, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// NormalizeBytes normalizes an in-memory buffer.
func (n *Normalizer) NormalizeBytes(data []byte) ([]Line, error) {
	return n.Normalize(context.Background(), bytes.NewReader(data))
}

// NormalizeString normalizes a string.
func (n *Normalizer) NormalizeString(s string) ([]Line, error) {
	return n.Normalize(context.Background(), strings.NewReader(s))
}

// NormalizeFile normalizes the file at path. The file is streamed, not loaded.
func (n *Normalizer) NormalizeFile(ctx context.Context, path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return n.Normalize(ctx, f)
}

// Close releases the compiled matcher. A closed Normalizer returns ErrClosed.
func (n *Normalizer) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	if n.running {
		return ErrScanInProgress
	}
	n.closed = true
	if n.matcher == nil {
		return nil
	}
	err := n.matcher.Close()
	n.matcher = nil
	return err
}

// LoadCatalogFromFile loads a YAML catalog for use with WithCatalog.
func LoadCatalogFromFile(path string) (*catalog.Catalog, error) {
	return catalog.NewLoader().LoadCatalogFile(path)
}

// ============================================================================
// HELPERS
// ============================================================================

func (n *Normalizer) acquire() (matcher.Matcher, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, ErrClosed
	}
	if n.running {
		return nil, ErrScanInProgress
	}
	if err := n.compileLocked(); err != nil {
		return nil, err
	}
	n.running = true
	return n.matcher, nil
}

func (n *Normalizer) release() {
	n.mu.Lock()
	n.running = false
	n.mu.Unlock()
}
