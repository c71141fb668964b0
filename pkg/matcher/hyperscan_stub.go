//go:build !cgo || !hyperscan

package matcher

import "fmt"

// NewHyperscan stub for builds without Hyperscan (non-CGO or missing hyperscan tag).
func NewHyperscan(cfg Config) (Matcher, error) {
	return nil, &CompileError{Err: fmt.Errorf("Hyperscan requires CGO (build with CGO_ENABLED=1 and -tags=hyperscan)")}
}
