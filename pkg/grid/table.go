package grid

import (
	"context"
	"fmt"
)

// Table is one mounted table instance: registry, rows, options, view-state
// and the gateway that persists its column config. A Table is driven from a
// single goroutine; only the gateway's confirmation timer runs elsewhere.
type Table struct {
	reg     *Registry
	rows    []Row
	opts    Options
	gw      *Gateway
	state   State
	pipe    Pipeline
	mounted bool
}

// New validates opts and builds an unmounted table. A nil gateway disables
// persistence.
func New(reg *Registry, rows []Row, opts Options, gw *Gateway) (*Table, error) {
	if reg == nil {
		return nil, fmt.Errorf("table requires a column registry")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if gw == nil {
		gw = NewGateway(nil, false)
	}
	if !opts.Customizable {
		gw = gw.detached()
	}
	return &Table{
		reg:  reg,
		rows: rows,
		opts: opts,
		gw:   gw,
	}, nil
}

// Mount resets sort, filters, search and page, then loads the column config.
func (t *Table) Mount(ctx context.Context) Result {
	t.state = InitialState(t.opts.DefaultPageSize)
	var cfg Config
	if t.opts.Customizable {
		cfg = t.gw.Load(ctx, t.opts.StorageKey, t.reg)
	} else {
		cfg = DefaultConfig(t.reg)
	}
	t.state = Reduce(t.reg, t.state, LoadConfig{Config: cfg})
	t.pipe.Invalidate()
	t.mounted = true
	return t.View()
}

// Close tears the table down, cancelling any pending confirmation.
func (t *Table) Close() {
	t.gw.Close()
	t.mounted = false
}

// Mounted reports whether Mount has run since the last Close.
func (t *Table) Mounted() bool { return t.mounted }

// Registry returns the table's column registry.
func (t *Table) Registry() *Registry { return t.reg }

// Options returns the table's options.
func (t *Table) Options() Options { return t.opts }

// State returns a copy of the current view-state.
func (t *Table) State() State { return t.state.clone() }

// Rows returns the raw rows the table was given.
func (t *Table) Rows() []Row { return t.rows }

// SetRows swaps the raw rows, keeping the view-state.
func (t *Table) SetRows(rows []Row) Result {
	t.rows = rows
	t.pipe.Invalidate()
	return t.View()
}

// View derives the current render pass.
func (t *Table) View() Result {
	return t.pipe.Derive(t.reg, t.rows, t.state, t.opts)
}

// Dispatch reduces a, persists the column config when the user changed it,
// and returns the new render pass.
func (t *Table) Dispatch(ctx context.Context, a Action) Result {
	prev := t.state.Config()
	t.state = Reduce(t.reg, t.state, a)
	if t.state.Touched && touchesConfig(a) && !prev.Equal(t.state.Config()) {
		t.gw.Save(ctx, t.opts.StorageKey, t.reg, t.state)
	}
	res := t.View()
	// keep the stored page in range so Next/Prev step from what is shown
	if t.opts.Pagination && res.Page != t.state.Page {
		t.state.Page = res.Page
	}
	return res
}

func touchesConfig(a Action) bool {
	switch a.(type) {
	case ToggleColumn, Drop, MoveColumn:
		return true
	}
	return false
}

// ClickHeader toggles the sort on field if it is sortable.
func (t *Table) ClickHeader(ctx context.Context, field string) Result {
	return t.Dispatch(ctx, ToggleSort{Field: field})
}

// SetFilter sets the filter text for a filterable column.
func (t *Table) SetFilter(ctx context.Context, field, text string) (Result, error) {
	col, ok := t.reg.Lookup(field)
	if !ok {
		return t.View(), fmt.Errorf("%w: %q", ErrUnknownColumn, field)
	}
	if !col.Filterable {
		return t.View(), fmt.Errorf("column %q is not filterable", field)
	}
	return t.Dispatch(ctx, SetFilter{Field: field, Text: text}), nil
}

// SetSearch sets the global search text. Ignored when search is disabled.
func (t *Table) SetSearch(ctx context.Context, text string) Result {
	if !t.opts.GlobalSearch {
		return t.View()
	}
	return t.Dispatch(ctx, SetSearch{Text: text})
}

// SetPage jumps to page n; out-of-range pages clamp.
func (t *Table) SetPage(ctx context.Context, n int) Result {
	return t.Dispatch(ctx, SetPage{Page: n})
}

// FirstPage jumps to page 1.
func (t *Table) FirstPage(ctx context.Context) Result { return t.SetPage(ctx, 1) }

// PrevPage steps back one page.
func (t *Table) PrevPage(ctx context.Context) Result { return t.SetPage(ctx, t.state.Page-1) }

// NextPage steps forward one page.
func (t *Table) NextPage(ctx context.Context) Result { return t.SetPage(ctx, t.state.Page+1) }

// LastPage jumps to the last page.
func (t *Table) LastPage(ctx context.Context) Result {
	return t.SetPage(ctx, t.View().TotalPages)
}

// SetPageSize changes rows per page to one of the allowed sizes.
func (t *Table) SetPageSize(ctx context.Context, n int) (Result, error) {
	if !t.opts.AllowsPageSize(n) {
		return t.View(), fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	return t.Dispatch(ctx, SetPageSize{Size: n}), nil
}

// ToggleColumn shows or hides a registered column.
func (t *Table) ToggleColumn(ctx context.Context, field string) (Result, error) {
	if !t.reg.Has(field) {
		return t.View(), fmt.Errorf("%w: %q", ErrUnknownColumn, field)
	}
	return t.Dispatch(ctx, ToggleColumn{Field: field}), nil
}

// DragStart picks up a column header.
func (t *Table) DragStart(field string) {
	t.state = Reduce(t.reg, t.state, DragStart{Field: field})
}

// Drop releases the picked-up column onto target.
func (t *Table) Drop(ctx context.Context, target string) Result {
	return t.Dispatch(ctx, Drop{Target: target})
}

// CancelDrag puts the picked-up column back without reordering.
func (t *Table) CancelDrag() {
	t.state = Reduce(t.reg, t.state, Drop{Target: t.state.Dragging})
}

// MoveColumn moves field to target's position in one step.
func (t *Table) MoveColumn(ctx context.Context, field, target string) (Result, error) {
	for _, f := range []string{field, target} {
		if !t.reg.Has(f) {
			return t.View(), fmt.Errorf("%w: %q", ErrUnknownColumn, f)
		}
	}
	return t.Dispatch(ctx, MoveColumn{Field: field, Target: target}), nil
}

// Reset restores the default column config in memory and in storage.
func (t *Table) Reset(ctx context.Context) Result {
	cfg := t.gw.Reset(ctx, t.opts.StorageKey, t.reg)
	t.state = Reduce(t.reg, t.state, ResetConfig{Config: cfg})
	return t.View()
}
