package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/poiesic/faqmatch/core"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

type document struct {
	Entries []core.Entry `yaml:"entries"`
}

// Parse decodes a YAML catalog document of the form
//
//	entries:
//	  - question: ...
//	    answer: ...
//
// Entries are returned in document order and validated.
func Parse(data []byte) ([]core.Entry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := core.ValidateEntries(doc.Entries); err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// LoadFile reads and parses a YAML catalog file.
func LoadFile(path string) ([]core.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in reference catalog.
func Default() []core.Entry {
	entries, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return entries
}
