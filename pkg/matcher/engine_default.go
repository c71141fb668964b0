//go:build !cgo || !hyperscan

package matcher

// Compile creates a regexp2-based matcher (no CGO required).
//
// For maximum throughput build with CGO_ENABLED=1 and -tags=hyperscan.
func Compile(cfg Config) (Matcher, error) {
	m, err := NewPortable(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Available reports whether the Hyperscan engine was compiled in.
func Available() bool {
	return false
}

// EngineInfo describes the active engine.
func EngineInfo() string {
	return "regexp2 (portable)"
}
