package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Brands []Brand `yaml:"brands"`
}

// LoadFile reads a catalog definition from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse YAML: %w", err)
	}
	if len(f.Brands) == 0 {
		return nil, fmt.Errorf("catalog: no brands defined")
	}
	return New(f.Brands)
}
