package catalog

import "embed"

// builtinFS embeds the built-in catalogs.
//
//go:embed patterns/*.yml
var builtinFS embed.FS

// DefaultName is the name of the default built-in catalog.
const DefaultName = "default"
