package columns

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// schemaProperty is the subset of a JSON Schema property gridkit reads.
type schemaProperty struct {
	Title      string    `yaml:"title"`
	Type       yaml.Node `yaml:"type"`
	MaxLength  int       `yaml:"maxLength"`
	Deprecated bool      `yaml:"deprecated"`
	Format     string    `yaml:"x-gridkit-format"`
	Render     string    `yaml:"x-gridkit-render"`
	Sortable   *bool     `yaml:"x-gridkit-sortable"`
	Filterable *bool     `yaml:"x-gridkit-filterable"`
}

// specsFromSchema reads properties (or items.properties) in declaration
// order. title names the header, maxLength sets the width, numeric types
// right-align and deprecated properties start hidden.
func specsFromSchema(root *yaml.Node) ([]Spec, error) {
	props := mapValue(root, "properties")
	if props == nil {
		if items := mapValue(root, "items"); items != nil && items.Kind == yaml.MappingNode {
			props = mapValue(items, "properties")
		}
	}
	if props == nil || props.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid column file: want a columns list or a JSON Schema with properties")
	}

	specs := make([]Spec, 0, len(props.Content)/2)
	for i := 0; i+1 < len(props.Content); i += 2 {
		name := props.Content[i].Value
		var p schemaProperty
		if err := props.Content[i+1].Decode(&p); err != nil {
			return nil, fmt.Errorf("schema property %q: %w", name, err)
		}
		s := Spec{
			Field:           name,
			HeaderName:      p.Title,
			Sortable:        p.Sortable,
			Filterable:      p.Filterable,
			Width:           p.MaxLength,
			HiddenByDefault: p.Deprecated,
			Format:          p.Format,
			Render:          p.Render,
		}
		if isNumericType(&p.Type) {
			s.Align = "right"
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// isNumericType accepts "integer", "number" or a list such as ["number", "null"].
func isNumericType(n *yaml.Node) bool {
	switch n.Kind {
	case yaml.ScalarNode:
		return n.Value == "integer" || n.Value == "number"
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if c.Value == "integer" || c.Value == "number" {
				return true
			}
		}
	}
	return false
}

func mappingRoot(doc *yaml.Node) *yaml.Node {
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	return n
}

func mapValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
