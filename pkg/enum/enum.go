// Package enum discovers the inputs to normalize.
package enum

import (
	"context"

	"github.com/praetorian-inc/linenorm/pkg/types"
)

// Enumerator discovers inputs from a source.
type Enumerator interface {
	// Enumerate yields sources. The callback may be invoked from several
	// goroutines at once; returning an error stops the enumeration.
	Enumerate(ctx context.Context, callback func(src types.Source) error) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration. A regular file yields itself.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// Workers bounds the number of concurrent callbacks (0 = one per CPU).
	Workers int
}
