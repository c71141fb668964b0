//go:build cgo && hyperscan

package matcher

import (
	"fmt"

	"github.com/flier/gohs/hyperscan"
)

// Compile creates a Hyperscan-based matcher.
//
// This file is only compiled when CGO is enabled and the "hyperscan" build
// tag is specified.
func Compile(cfg Config) (Matcher, error) {
	m, err := NewHyperscan(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Available reports whether the Hyperscan engine was compiled in.
func Available() bool {
	return true
}

// EngineInfo describes the active engine.
func EngineInfo() string {
	return fmt.Sprintf("hyperscan %s", hyperscan.Version())
}
