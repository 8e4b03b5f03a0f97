package vocabulary

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Value is one allowed value of a category with its prompt description
type Value struct {
	Name        string
	Description string
}

// Category is one categorical style field (e.g. narrativeVoice)
type Category struct {
	Key     string  `yaml:"-"`
	Label   string  `yaml:"label"`
	Default string  `yaml:"default"`
	Values  []Value `yaml:"-"` // Ordered as defined in YAML
}

// Table is the vocabulary of one style kind
type Table struct {
	Kind       string     `yaml:"kind"`
	Categories []Category `yaml:"-"` // Ordered as defined in YAML
}

// UnmarshalYAML preserves category and value order from the YAML file
func (t *Table) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("vocabulary: expected mapping, got %v", node.Tag)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "kind":
			t.Kind = val.Value
		case "categories":
			for j := 0; j+1 < len(val.Content); j += 2 {
				cat, err := decodeCategory(val.Content[j].Value, val.Content[j+1])
				if err != nil {
					return err
				}
				t.Categories = append(t.Categories, cat)
			}
		}
	}

	return nil
}

func decodeCategory(key string, node *yaml.Node) (Category, error) {
	cat := Category{Key: key}
	if err := node.Decode(&cat); err != nil {
		return cat, fmt.Errorf("vocabulary: category %s: %w", key, err)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "values" {
			continue
		}
		values := node.Content[i+1]
		for j := 0; j+1 < len(values.Content); j += 2 {
			cat.Values = append(cat.Values, Value{
				Name:        values.Content[j].Value,
				Description: values.Content[j+1].Value,
			})
		}
	}

	if !cat.Allows(cat.Default) {
		return cat, fmt.Errorf("vocabulary: category %s default %q is not an allowed value", key, cat.Default)
	}
	return cat, nil
}

// Allows reports whether value is in the category's closed vocabulary
func (c *Category) Allows(value string) bool {
	for _, v := range c.Values {
		if v.Name == value {
			return true
		}
	}
	return false
}

// Names returns the allowed values in order
func (c *Category) Names() []string {
	names := make([]string, len(c.Values))
	for i, v := range c.Values {
		names[i] = v.Name
	}
	return names
}
