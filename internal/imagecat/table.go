package imagecat

import (
	_ "embed"
	"fmt"
	"os"

	"aidhub/pkg/types"

	"gopkg.in/yaml.v3"
)

const defaultMaxGap = 20

//go:embed categories.yaml
var defaultTable []byte

// DefaultTable returns the category table shipped with the binary.
func DefaultTable() (*types.CategoryTable, error) {
	return ParseTable(defaultTable)
}

// LoadTable reads a category table from path, or the embedded one when path is empty.
func LoadTable(path string) (*types.CategoryTable, error) {
	if path == "" {
		return DefaultTable()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category table %s: %w", path, err)
	}

	return ParseTable(data)
}

func ParseTable(data []byte) (*types.CategoryTable, error) {
	table := new(types.CategoryTable)
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("parse category table: %w", err)
	}

	if table.MaxGap == 0 {
		table.MaxGap = defaultMaxGap
	}

	if err := validateTable(table); err != nil {
		return nil, err
	}

	return table, nil
}

func validateTable(table *types.CategoryTable) error {
	if table.Version == "" {
		return fmt.Errorf("category table: missing version")
	}
	if table.MaxGap < 0 {
		return fmt.Errorf("category table: max_gap must not be negative")
	}
	if len(table.Categories) == 0 {
		return fmt.Errorf("category table: no categories")
	}

	seen := make(map[string]bool, len(table.Categories))
	for _, c := range table.Categories {
		if c.Name == "" || c.Name == types.CategoryOther {
			return fmt.Errorf("category table: invalid category name %q", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("category table: duplicate category %q", c.Name)
		}
		seen[c.Name] = true

		if len(c.Ranges) == 0 {
			return fmt.Errorf("category table: %s has no ranges", c.Name)
		}
		for _, r := range c.Ranges {
			if r.Start < 0 || r.End <= r.Start {
				return fmt.Errorf("category table: %s has invalid range [%d, %d)", c.Name, r.Start, r.End)
			}
		}
	}

	return nil
}
