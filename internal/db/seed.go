package db

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed icon_types.yaml
var iconTypesYAML []byte

// IconType is one entry of the icon codebook.
type IconType struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type iconCodebook struct {
	IconTypes []IconType `yaml:"icon_types"`
}

// IconCodebook returns the embedded icon type codebook.
func IconCodebook() ([]IconType, error) {
	return ParseIconCodebook(iconTypesYAML)
}

// ParseIconCodebook decodes a YAML codebook. Duplicate ids and blank names
// are rejected.
func ParseIconCodebook(data []byte) ([]IconType, error) {
	var book iconCodebook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("failed to parse icon codebook: %w", err)
	}

	seen := make(map[int]bool, len(book.IconTypes))
	for _, t := range book.IconTypes {
		if t.Name == "" {
			return nil, fmt.Errorf("icon type %d has no name", t.ID)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("icon type %d listed twice", t.ID)
		}
		seen[t.ID] = true
	}
	return book.IconTypes, nil
}
