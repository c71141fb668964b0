package catalog

// yamlPattern is the intermediate struct for parsing a catalog entry.
type yamlPattern struct {
	ID          uint     `yaml:"id"`
	Name        string   `yaml:"name"`
	Pattern     string   `yaml:"pattern"`
	Flags       []string `yaml:"flags,omitempty"`
	Placeholder string   `yaml:"placeholder"`
	Description string   `yaml:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
	Examples    []string `yaml:"examples,omitempty"`
}

// yamlCatalogFile represents the top-level structure of a catalog YAML file.
// Base names a catalog to start from ("default"); entries then replace by id.
type yamlCatalogFile struct {
	Base       string        `yaml:"base,omitempty"`
	Terminator *uint         `yaml:"terminator,omitempty"`
	Patterns   []yamlPattern `yaml:"patterns"`
}
