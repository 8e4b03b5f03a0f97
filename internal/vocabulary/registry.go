package vocabulary

import (
	"embed"
	"fmt"
	"sync"

	"storyloom/internal/domain/models/style"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFiles embed.FS

// NoDescription is returned for unknown categories or values
const NoDescription = "No description available"

var (
	defaultRegistry *Registry
	loadOnce        sync.Once
)

// Registry holds the vocabulary tables for every style kind
type Registry struct {
	tables map[style.Kind]*Table
}

// Default returns the registry built from the embedded tables.
// The tables ship with the binary, so a load failure is a programming error.
func Default() *Registry {
	loadOnce.Do(func() {
		r, err := NewRegistry()
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// NewRegistry creates a registry and loads the embedded YAML files
func NewRegistry() (*Registry, error) {
	r := &Registry{tables: make(map[style.Kind]*Table)}

	for _, kind := range []style.Kind{style.KindAuthor, style.KindBook} {
		if err := r.loadKindFile(kind); err != nil {
			return nil, fmt.Errorf("failed to load %s vocabulary: %w", kind, err)
		}
	}

	return r, nil
}

func (r *Registry) loadKindFile(kind style.Kind) error {
	filename := fmt.Sprintf("data/%s.yaml", kind)
	data, err := dataFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}
	if table.Kind != string(kind) {
		return fmt.Errorf("%s declares kind %q", filename, table.Kind)
	}

	r.tables[kind] = &table
	return nil
}

// Categories returns the categories of a kind in display order
func (r *Registry) Categories(kind style.Kind) []Category {
	t, ok := r.tables[kind]
	if !ok {
		return nil
	}
	return t.Categories
}

// Category looks up one category of a kind
func (r *Registry) Category(kind style.Kind, key string) (*Category, bool) {
	t, ok := r.tables[kind]
	if !ok {
		return nil, false
	}
	for i := range t.Categories {
		if t.Categories[i].Key == key {
			return &t.Categories[i], true
		}
	}
	return nil, false
}

// Describe returns the human-readable description of a categorical value.
// Unknown kinds, categories or values yield NoDescription.
func (r *Registry) Describe(kind style.Kind, category, value string) string {
	cat, ok := r.Category(kind, category)
	if !ok {
		return NoDescription
	}
	for _, v := range cat.Values {
		if v.Name == value {
			return v.Description
		}
	}
	return NoDescription
}

// Defaults returns category -> default value for a kind
func (r *Registry) Defaults(kind style.Kind) map[string]string {
	cats := r.Categories(kind)
	defaults := make(map[string]string, len(cats))
	for _, c := range cats {
		defaults[c.Key] = c.Default
	}
	return defaults
}

// Normalize fills every missing categorical value of s with the category
// default. Values outside the vocabulary are kept; Describe handles them.
func (r *Registry) Normalize(s *style.Style) {
	if s.Attributes == nil {
		s.Attributes = map[string]string{}
	}
	for _, c := range r.Categories(s.Kind) {
		if s.Attributes[c.Key] == "" {
			s.Attributes[c.Key] = c.Default
		}
	}
}

// Fallback returns an unsaved style holding the vocabulary defaults
func (r *Registry) Fallback(kind style.Kind) *style.Style {
	return &style.Style{
		Kind:       kind,
		Name:       "Default",
		Attributes: r.Defaults(kind),
	}
}
