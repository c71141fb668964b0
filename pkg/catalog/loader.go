package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/praetorian-inc/linenorm/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader handles loading catalogs from YAML files.
type Loader struct {
	fs fs.FS // embedded filesystem for built-in catalogs
}

// NewLoader creates a loader with built-in catalogs from embedded filesystem.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem.
// Built-in catalogs are looked up under "patterns/<name>.yml".
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// LoadCatalog loads a catalog from YAML bytes.
// A file naming a base catalog starts from that catalog and replaces entries by id.
func (l *Loader) LoadCatalog(data []byte) (*Catalog, error) {
	var yamlFile yamlCatalogFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	defs := make([]*types.PatternDefinition, 0, len(yamlFile.Patterns))
	for _, yp := range yamlFile.Patterns {
		d, err := convertYAMLPattern(yp)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}

	if yamlFile.Base != "" {
		return l.extend(yamlFile, defs)
	}

	if len(defs) == 0 {
		return nil, fmt.Errorf("no patterns found in YAML")
	}

	terminator := DefaultTerminator
	if yamlFile.Terminator != nil {
		terminator = *yamlFile.Terminator
	}
	return New(terminator, defs...)
}

// LoadCatalogFile loads a catalog from a YAML file path.
func (l *Loader) LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadCatalog(data)
}

// LoadBuiltin loads the named built-in catalog.
func (l *Loader) LoadBuiltin(name string) (*Catalog, error) {
	p := path.Join("patterns", name+".yml")
	data, err := fs.ReadFile(l.fs, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}

	var yamlFile yamlCatalogFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p, err)
	}
	if yamlFile.Base != "" {
		return nil, fmt.Errorf("built-in catalog %s cannot extend %s", name, yamlFile.Base)
	}
	return l.LoadCatalog(data)
}

// LoadDefault loads the default catalog.
func (l *Loader) LoadDefault() (*Catalog, error) {
	return l.LoadBuiltin(DefaultName)
}

// BuiltinNames lists the names of the built-in catalogs.
func (l *Loader) BuiltinNames() ([]string, error) {
	entries, err := fs.ReadDir(l.fs, "patterns")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	return names, nil
}

func (l *Loader) extend(yamlFile yamlCatalogFile, defs []*types.PatternDefinition) (*Catalog, error) {
	base, err := l.LoadBuiltin(yamlFile.Base)
	if err != nil {
		return nil, fmt.Errorf("loading base catalog: %w", err)
	}
	if yamlFile.Terminator != nil && *yamlFile.Terminator != base.Terminator() {
		return nil, fmt.Errorf("catalog extending %s cannot change the terminator id", yamlFile.Base)
	}
	for _, d := range defs {
		if err := base.Replace(d.ID, d); err != nil {
			return nil, err
		}
	}
	return base, nil
}

// convertYAMLPattern converts yamlPattern to types.PatternDefinition.
func convertYAMLPattern(yp yamlPattern) (*types.PatternDefinition, error) {
	flags, err := types.ParsePatternFlags(yp.Flags)
	if err != nil {
		return nil, fmt.Errorf("pattern %d: %w", yp.ID, err)
	}
	return &types.PatternDefinition{
		ID:          yp.ID,
		Name:        yp.Name,
		Pattern:     yp.Pattern,
		Flags:       flags,
		Placeholder: yp.Placeholder,
		Description: yp.Description,
		Keywords:    yp.Keywords,
		Examples:    yp.Examples,
	}, nil
}
