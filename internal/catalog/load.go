package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed symptoms.yaml
var defaultCatalog []byte

// Default returns the built-in 131-symptom catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path selects the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML mapping of symptom name to severity. Document order
// becomes column order, so the mapping is walked as a node rather than
// decoded into a Go map.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyCatalog
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog must be a mapping of symptom to severity (line %d)", root.Line)
	}

	symptoms := make([]Symptom, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		var severity int
		if err := val.Decode(&severity); err != nil {
			return nil, fmt.Errorf("line %d: severity for %s: %w", val.Line, key.Value, err)
		}
		symptoms = append(symptoms, Symptom{Name: key.Value, Severity: severity})
	}

	return New(symptoms)
}
