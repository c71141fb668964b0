//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("LinenormNew", js.FuncOf(newNormalizer))
	js.Global().Set("LinenormNormalize", js.FuncOf(normalize))
	js.Global().Set("LinenormNormalizeBatch", js.FuncOf(normalizeBatch))
	js.Global().Set("LinenormClose", js.FuncOf(closeNormalizer))
	js.Global().Set("LinenormGetBuiltinPatterns", js.FuncOf(getBuiltinPatterns))

	// Keep WASM running
	<-make(chan struct{})
}
