//go:build wasm

package main

import (
	"context"
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/praetorian-inc/linenorm"
	"github.com/praetorian-inc/linenorm/pkg/catalog"
	"github.com/praetorian-inc/linenorm/pkg/serve"
)

var (
	normalizers   = make(map[int]*linenorm.Normalizer)
	normalizersMu sync.RWMutex
	nextID        int
)

// options is the optional second argument of LinenormNew.
type options struct {
	BlockSize     int  `json:"block_size"`
	FlushTrailing bool `json:"flush_trailing"`
	SkipBare      bool `json:"skip_bare"`
}

// newNormalizer creates a normalizer from a YAML catalog, or the builtin one
// when the catalog is empty or "builtin".
// JS: LinenormNew(catalogYAML, optionsJSON?) -> {handle} or {error}
func newNormalizer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "catalog argument required"}
	}

	var opts []linenorm.Option
	if src := args[0].String(); src != "" && src != "builtin" {
		c, err := catalog.NewLoader().LoadCatalog([]byte(src))
		if err != nil {
			return map[string]interface{}{"error": "failed to load catalog: " + err.Error()}
		}
		opts = append(opts, linenorm.WithCatalog(c))
	}

	if len(args) > 1 && args[1].String() != "" {
		var o options
		if err := json.Unmarshal([]byte(args[1].String()), &o); err != nil {
			return map[string]interface{}{"error": "failed to parse options JSON: " + err.Error()}
		}
		if o.BlockSize != 0 {
			opts = append(opts, linenorm.WithBlockSize(o.BlockSize))
		}
		if o.FlushTrailing {
			opts = append(opts, linenorm.WithFlushTrailing())
		}
		if o.SkipBare {
			opts = append(opts, linenorm.WithoutBareLines())
		}
	}

	n, err := linenorm.New(opts...)
	if err != nil {
		return map[string]interface{}{"error": "failed to create normalizer: " + err.Error()}
	}
	if err := n.Compile(); err != nil {
		n.Close()
		return map[string]interface{}{"error": "failed to compile patterns: " + err.Error()}
	}

	normalizersMu.Lock()
	id := nextID
	nextID++
	normalizers[id] = n
	normalizersMu.Unlock()

	return map[string]interface{}{"handle": id}
}

func lookup(handle int) (*linenorm.Normalizer, bool) {
	normalizersMu.RLock()
	defer normalizersMu.RUnlock()
	n, ok := normalizers[handle]
	return n, ok
}

// normalize normalizes a single content string.
// JS: LinenormNormalize(handle, content, source) -> JSON result or {error}
func normalize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and content arguments required"}
	}

	n, ok := lookup(args[0].Int())
	if !ok {
		return map[string]interface{}{"error": "invalid normalizer handle"}
	}

	p := serve.NormalizePayload{Content: args[1].String()}
	if len(args) > 2 {
		p.Source = args[2].String()
	}

	result, err := serve.Normalize(context.Background(), n, p)
	if err != nil {
		return map[string]interface{}{"error": "normalize failed: " + err.Error()}
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal result: " + err.Error()}
	}
	return string(jsonBytes)
}

// normalizeBatch normalizes several items. A failing item carries its error
// in its own result.
// JS: LinenormNormalizeBatch(handle, itemsJSON) -> JSON results or {error}
func normalizeBatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return map[string]interface{}{"error": "handle and itemsJSON arguments required"}
	}

	n, ok := lookup(args[0].Int())
	if !ok {
		return map[string]interface{}{"error": "invalid normalizer handle"}
	}

	var items []serve.NormalizePayload
	if err := json.Unmarshal([]byte(args[1].String()), &items); err != nil {
		return map[string]interface{}{"error": "failed to parse items JSON: " + err.Error()}
	}

	results := make([]serve.NormalizeResult, 0, len(items))
	for _, item := range items {
		result, err := serve.Normalize(context.Background(), n, item)
		if err != nil {
			result = serve.NormalizeResult{Source: item.Source, Lines: []serve.LineResult{}, Error: err.Error()}
		}
		results = append(results, result)
	}

	jsonBytes, err := json.Marshal(results)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal results: " + err.Error()}
	}
	return string(jsonBytes)
}

// closeNormalizer closes a normalizer and releases its matcher.
// JS: LinenormClose(handle)
func closeNormalizer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{"error": "handle argument required"}
	}

	handle := args[0].Int()

	normalizersMu.Lock()
	n, ok := normalizers[handle]
	if ok {
		delete(normalizers, handle)
	}
	normalizersMu.Unlock()

	if !ok {
		return map[string]interface{}{"error": "invalid normalizer handle"}
	}

	n.Close()
	return nil
}

// getBuiltinPatterns returns the builtin catalog as JSON.
// JS: LinenormGetBuiltinPatterns() -> JSON pattern array
func getBuiltinPatterns(this js.Value, args []js.Value) interface{} {
	c, err := catalog.Default()
	if err != nil {
		return map[string]interface{}{"error": "failed to load builtin patterns: " + err.Error()}
	}

	defs := c.Definitions()
	infos := make([]serve.PatternInfo, 0, len(defs))
	for _, d := range defs {
		infos = append(infos, serve.PatternInfo{ID: d.ID, Name: d.Name, Placeholder: d.Placeholder})
	}

	jsonBytes, err := json.Marshal(infos)
	if err != nil {
		return map[string]interface{}{"error": "failed to marshal patterns: " + err.Error()}
	}
	return string(jsonBytes)
}
