// Package columns builds grid registries from column files, JSON Schemas or
// the rows themselves.
package columns

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/internal/cel"
	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// Spec is one column as written in a column file.
type Spec struct {
	Field           string `yaml:"field"`
	HeaderName      string `yaml:"headerName,omitempty"`
	Sortable        *bool  `yaml:"sortable,omitempty"`
	Filterable      *bool  `yaml:"filterable,omitempty"`
	Width           int    `yaml:"width,omitempty"`
	Align           string `yaml:"align,omitempty"`
	HiddenByDefault bool   `yaml:"hiddenByDefault,omitempty"`
	// Format is a CEL expression over value.
	Format string `yaml:"format,omitempty"`
	// Render is a CEL expression over row.
	Render string `yaml:"render,omitempty"`
}

// File is the column file layout.
type File struct {
	Columns []Spec `yaml:"columns"`
}

// Parse reads a column file or a JSON Schema (JSON or YAML) and compiles
// any format and render expressions with ev. ev may be nil when no column
// uses an expression.
func Parse(data []byte, ev *cel.Evaluator) (*grid.Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid column file: %w", err)
	}
	root := mappingRoot(&doc)
	if root == nil {
		return nil, fmt.Errorf("invalid column file: expected a mapping")
	}

	var specs []Spec
	if mapValue(root, "columns") != nil {
		var f File
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid column file: %w", err)
		}
		specs = f.Columns
	} else {
		var err error
		if specs, err = specsFromSchema(root); err != nil {
			return nil, err
		}
	}
	return Build(specs, ev)
}

// LoadFile reads and parses the column file at path.
func LoadFile(path string, ev *cel.Evaluator) (*grid.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reg, err := Parse(data, ev)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Build turns specs into a registry. Sortable and Filterable default to true.
func Build(specs []Spec, ev *cel.Evaluator) (*grid.Registry, error) {
	cols := make([]grid.Column, 0, len(specs))
	for _, s := range specs {
		col, err := s.column(ev)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("column file defines no columns")
	}
	return grid.NewRegistry(cols...)
}

func (s Spec) column(ev *cel.Evaluator) (grid.Column, error) {
	col := grid.Column{
		Field:           s.Field,
		HeaderName:      s.HeaderName,
		Sortable:        s.Sortable == nil || *s.Sortable,
		Filterable:      s.Filterable == nil || *s.Filterable,
		Width:           s.Width,
		HiddenByDefault: s.HiddenByDefault,
	}
	switch s.Align {
	case "", "left":
	case "right":
		col.AlignRight = true
	default:
		return col, fmt.Errorf("column %q: align %q: want left or right", s.Field, s.Align)
	}
	if s.Width < 0 {
		return col, fmt.Errorf("column %q: width must be non-negative", s.Field)
	}
	if (s.Format != "" || s.Render != "") && ev == nil {
		return col, fmt.Errorf("column %q: expressions need an evaluator", s.Field)
	}
	if s.Format != "" {
		f, err := ev.ValueFormatter(s.Format)
		if err != nil {
			return col, fmt.Errorf("column %q format: %w", s.Field, err)
		}
		col.ValueFormatter = f
	}
	if s.Render != "" {
		r, err := ev.CellRenderer(s.Render)
		if err != nil {
			return col, fmt.Errorf("column %q render: %w", s.Field, err)
		}
		col.CellRenderer = r
	}
	return col, nil
}

// Infer builds a registry from the union of row keys. Rows are scanned in
// order and each row's new keys are added in sorted order. Empty keys are
// skipped. Every inferred column is sortable and filterable; columns
// whose values are all numbers are right-aligned.
func Infer(rows []grid.Row) *grid.Registry {
	var fields []string
	seen := make(map[string]bool)
	numeric := make(map[string]bool)
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "" {
				continue
			}
			if !seen[k] {
				seen[k] = true
				numeric[k] = true
				fields = append(fields, k)
			}
			if v := row[k]; v != nil && !isNumber(v) {
				numeric[k] = false
			}
		}
	}
	cols := make([]grid.Column, len(fields))
	for i, f := range fields {
		cols[i] = grid.Column{Field: f, Sortable: true, Filterable: true, AlignRight: numeric[f]}
	}
	return grid.MustRegistry(cols...)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// Marshal renders reg back to the column file layout. Expressions are not
// recoverable from compiled columns and are omitted.
func Marshal(reg *grid.Registry) ([]byte, error) {
	f := File{}
	for _, c := range reg.Columns() {
		s := Spec{
			Field:           c.Field,
			HeaderName:      c.HeaderName,
			Width:           c.Width,
			HiddenByDefault: c.HiddenByDefault,
		}
		if !c.Sortable {
			s.Sortable = boolPtr(false)
		}
		if !c.Filterable {
			s.Filterable = boolPtr(false)
		}
		if c.AlignRight {
			s.Align = "right"
		}
		f.Columns = append(f.Columns, s)
	}
	return yaml.Marshal(f)
}

func boolPtr(b bool) *bool { return &b }
