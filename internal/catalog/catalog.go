// Package catalog reads the static mount catalog used to seed a fresh store.
// The catalog groups item names under a category and an expansion.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/ocular/pkg/types"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Group is one category of the catalog file.
type Group struct {
	Category   string           `yaml:"category"`
	Expansions []ExpansionGroup `yaml:"expansions"`
}

// ExpansionGroup lists the item names of one expansion within a category.
type ExpansionGroup struct {
	Name  string   `yaml:"name"`
	Items []string `yaml:"items"`
}

// Default returns the embedded catalog flattened to items.
func Default() ([]types.Item, error) {
	return parse(defaultCatalog)
}

// Load reads a catalog file from r and flattens it to items.
func Load(r io.Reader) ([]types.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return parse(data)
}

// LoadFile opens path and loads it. An empty path selects the default catalog.
func LoadFile(path string) ([]types.Item, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// parse decodes the grouped YAML and validates every entry. Names must be
// unique across the whole catalog, not just within a group.
func parse(data []byte) ([]types.Item, error) {
	var groups []Group
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	seen := make(map[string]bool)
	var items []types.Item
	for _, g := range groups {
		if !types.IsValidCategory(g.Category) {
			return nil, fmt.Errorf("category %q: %w", g.Category, types.ErrInvalidCategory)
		}
		for _, eg := range g.Expansions {
			for _, name := range eg.Items {
				item := types.Item{Name: name, Expansion: eg.Name, Category: g.Category}
				if err := item.Validate(); err != nil {
					return nil, fmt.Errorf("catalog entry %q: %w", name, err)
				}
				if seen[name] {
					return nil, fmt.Errorf("catalog entry %q: %w", name, types.ErrDuplicateItem)
				}
				seen[name] = true
				items = append(items, item)
			}
		}
	}
	return items, nil
}
