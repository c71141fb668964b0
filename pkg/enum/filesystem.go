package enum

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"golang.org/x/sync/errgroup"
)

// sniffSize is how much of a file is inspected to detect binary content.
const sniffSize = 8192

// FilesystemEnumerator enumerates files from a filesystem path.
type FilesystemEnumerator struct {
	config Config
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	return &FilesystemEnumerator{config: config}
}

// Enumerate walks the filesystem and yields text files.
// Phase 1: Walk directory tree and collect eligible file paths (fast, sequential).
// Phase 2: Sniff files for binary content and invoke callback in parallel.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback func(src types.Source) error) error {
	info, err := os.Stat(e.config.Root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", e.config.Root, err)
	}
	if !info.IsDir() {
		return callback(types.Source{Path: e.config.Root, Size: info.Size()})
	}

	files, err := e.walk(ctx)
	if err != nil {
		return err
	}

	workers := e.config.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	sourcesCh := make(chan types.Source, workers*2)

	// Feed sources to workers
	g.Go(func() error {
		defer close(sourcesCh)
		for _, src := range files {
			select {
			case sourcesCh <- src:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for src := range sourcesCh {
				if err := e.processFile(ctx, src, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// If the caller's context was cancelled but all goroutines finished
	// before noticing, propagate the cancellation.
	return origCtx.Err()
}

// walk collects the eligible files below Root in lexical order.
func (e *FilesystemEnumerator) walk(ctx context.Context) ([]types.Source, error) {
	var ignore *gitignore.GitIgnore
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		ignore, _ = gitignore.CompileIgnoreFile(gitignorePath)
	}

	var files []types.Source
	err := filepath.Walk(e.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(e.config.Root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if relPath == "." {
				return nil
			}
			if !e.config.IncludeHidden && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			if ignore != nil && (ignore.MatchesPath(relPath) || ignore.MatchesPath(relPath+"/")) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if !e.config.FollowSymlinks {
				return nil
			}
			target, err := os.Stat(path)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		if !e.config.IncludeHidden && isHidden(info.Name()) {
			return nil
		}

		if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
			return nil
		}

		if ignore != nil && ignore.MatchesPath(relPath) {
			return nil
		}

		files = append(files, types.Source{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// processFile skips binary files and invokes the callback for the rest.
func (e *FilesystemEnumerator) processFile(ctx context.Context, src types.Source, callback func(src types.Source) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	binary, err := sniffBinary(src.Path)
	if err != nil {
		return err
	}
	if binary {
		return nil
	}

	return callback(src)
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// sniffBinary reports whether the first 8KB of the file contain a null byte.
func sniffBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return isBinary(head[:n]), nil
}

// isBinary detects if content is binary by checking for null bytes.
func isBinary(content []byte) bool {
	return bytes.IndexByte(content, 0) != -1
}
