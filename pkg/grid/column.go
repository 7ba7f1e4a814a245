// Package grid implements a client-side data-table engine: an immutable column
// registry, a mutable view-state driven by a pure reducer, a deterministic
// search/filter/sort/paginate/project pipeline, and a persistence gateway that
// keeps per-table column customization valid for the current registry.
package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyField is returned when a column has no field key.
	ErrEmptyField = errors.New("column field is empty")
	// ErrDuplicateField is returned when two columns share a field key.
	ErrDuplicateField = errors.New("duplicate column field")
	// ErrUnknownColumn is returned when an operation names a field that is not registered.
	ErrUnknownColumn = errors.New("unknown column")
)

// Column describes how one field of a row is labelled, sorted, filtered and rendered.
// Columns are owned by the caller; the engine never mutates them.
type Column struct {
	// Field is the row key and the canonical column identifier.
	Field string
	// HeaderName is the display label. Empty means Field.
	HeaderName string

	Sortable   bool
	Filterable bool

	// ValueFormatter turns the raw value into display text. Ignored when
	// CellRenderer is set.
	ValueFormatter func(value any) string
	// CellRenderer renders the whole cell from the row.
	CellRenderer func(row Row) string

	// Width is a display hint in characters. 0 lets the host decide.
	Width int
	// AlignRight right-aligns the cells, typically for numbers.
	AlignRight bool

	HiddenByDefault bool
}

// Header returns the label shown in the header row.
func (c Column) Header() string {
	if c.HeaderName != "" {
		return c.HeaderName
	}
	return c.Field
}

// Registry is the ordered, immutable set of columns for one table.
type Registry struct {
	columns []Column
	index   map[string]int
}

// NewRegistry validates and freezes the given columns.
func NewRegistry(cols ...Column) (*Registry, error) {
	r := &Registry{
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c.Field == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrEmptyField)
		}
		if _, dup := r.index[c.Field]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, c.Field)
		}
		r.index[c.Field] = i
		r.columns[i] = c
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Intended for static
// registries declared in code.
func MustRegistry(cols ...Column) *Registry {
	r, err := NewRegistry(cols...)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of registered columns.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.columns)
}

// Columns returns a copy of the registered columns in registry order.
func (r *Registry) Columns() []Column {
	if r == nil {
		return nil
	}
	return append([]Column(nil), r.columns...)
}

// Fields returns every field key in registry order.
func (r *Registry) Fields() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.columns))
	for i, c := range r.columns {
		out[i] = c.Field
	}
	return out
}

// Has reports whether field is registered.
func (r *Registry) Has(field string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[field]
	return ok
}

// Lookup resolves a field back to its column.
func (r *Registry) Lookup(field string) (Column, bool) {
	if r == nil {
		return Column{}, false
	}
	i, ok := r.index[field]
	if !ok {
		return Column{}, false
	}
	return r.columns[i], true
}

// DefaultVisible returns the fields not marked HiddenByDefault, in registry order.
func (r *Registry) DefaultVisible() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.columns))
	for _, c := range r.columns {
		if !c.HiddenByDefault {
			out = append(out, c.Field)
		}
	}
	return out
}
