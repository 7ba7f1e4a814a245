package grid

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// SortState is the single active sort key.
type SortState struct {
	Key       string
	Direction Direction
}

// State is the user-mutable view-state of one table instance.
type State struct {
	Sort    *SortState
	Filters map[string]string
	Search  string
	Page    int
	// PageSize is one of the table's allowed sizes.
	PageSize int

	// Visible is a set kept in registry order. Order decides layout.
	Visible []string
	Order   []string

	// Touched is set by user edits to the column config and cleared by
	// loads and resets. Only touched state is re-persisted.
	Touched bool
	// Dragging holds the field picked up by DragStart until Drop.
	Dragging string
}

// InitialState returns the reset-on-mount state for the given page size.
func InitialState(pageSize int) State {
	return State{
		Filters:  map[string]string{},
		Page:     1,
		PageSize: pageSize,
	}
}

// Config extracts the persisted subset.
func (s State) Config() Config {
	return Config{
		Visible: append([]string(nil), s.Visible...),
		Order:   append([]string(nil), s.Order...),
	}
}

// IsVisible reports whether field is in the visible set.
func (s State) IsVisible(field string) bool {
	return indexOf(s.Visible, field) >= 0
}

func (s State) clone() State {
	out := s
	if s.Sort != nil {
		ss := *s.Sort
		out.Sort = &ss
	}
	out.Filters = make(map[string]string, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	out.Visible = append([]string(nil), s.Visible...)
	out.Order = append([]string(nil), s.Order...)
	return out
}

// Action is one user interaction or lifecycle event applied by Reduce.
type Action interface {
	isAction()
}

type (
	// ToggleSort is a click on a column header.
	ToggleSort struct{ Field string }
	// SetFilter replaces one column's filter text; empty clears it.
	SetFilter struct{ Field, Text string }
	// SetSearch replaces the global search text.
	SetSearch struct{ Text string }
	// SetPage requests a 1-based page. The pipeline clamps it.
	SetPage struct{ Page int }
	// SetPageSize changes rows per page.
	SetPageSize struct{ Size int }
	// ToggleColumn shows or hides a column.
	ToggleColumn struct{ Field string }
	// DragStart picks up a column header.
	DragStart struct{ Field string }
	// Drop releases the picked-up column onto Target.
	Drop struct{ Target string }
	// MoveColumn is DragStart{Field} followed by Drop{Target}.
	MoveColumn struct{ Field, Target string }
	// LoadConfig installs a config read from the gateway.
	LoadConfig struct{ Config Config }
	// ResetConfig installs the default config after a reset.
	ResetConfig struct{ Config Config }
)

func (ToggleSort) isAction()   {}
func (SetFilter) isAction()    {}
func (SetSearch) isAction()    {}
func (SetPage) isAction()      {}
func (SetPageSize) isAction()  {}
func (ToggleColumn) isAction() {}
func (DragStart) isAction()    {}
func (Drop) isAction()         {}
func (MoveColumn) isAction()   {}
func (LoadConfig) isAction()   {}
func (ResetConfig) isAction()  {}

// Reduce applies a to s and returns the new state. s is never modified.
// reg is consulted for sortability; a nil registry allows sorting any field.
func Reduce(reg *Registry, s State, a Action) State {
	next := s.clone()
	switch a := a.(type) {
	case ToggleSort:
		if reg != nil {
			col, ok := reg.Lookup(a.Field)
			if !ok || !col.Sortable {
				return next
			}
		}
		if next.Sort != nil && next.Sort.Key == a.Field {
			next.Sort.Direction = next.Sort.Direction.Flip()
		} else {
			next.Sort = &SortState{Key: a.Field, Direction: Asc}
		}
	case SetFilter:
		if a.Text == "" {
			delete(next.Filters, a.Field)
		} else {
			next.Filters[a.Field] = a.Text
		}
		next.Page = 1
	case SetSearch:
		next.Search = a.Text
		next.Page = 1
	case SetPage:
		next.Page = a.Page
	case SetPageSize:
		if a.Size > 0 {
			next.PageSize = a.Size
			next.Page = 1
		}
	case ToggleColumn:
		if i := indexOf(next.Visible, a.Field); i >= 0 {
			next.Visible = append(next.Visible[:i], next.Visible[i+1:]...)
		} else {
			next.Visible = inRegistryOrder(reg, append(next.Visible, a.Field))
		}
		next.Touched = true
	case DragStart:
		next.Dragging = a.Field
	case Drop:
		from := next.Dragging
		next.Dragging = ""
		if from == "" || from == a.Target {
			return next
		}
		moved := Reorder(next.Order, from, a.Target)
		if !equalStrings(moved, next.Order) {
			next.Order = moved
			next.Touched = true
		}
	case MoveColumn:
		next = Reduce(reg, next, DragStart{Field: a.Field})
		next = Reduce(reg, next, Drop{Target: a.Target})
	case LoadConfig:
		next.Visible = append([]string(nil), a.Config.Visible...)
		next.Order = append([]string(nil), a.Config.Order...)
		next.Touched = false
		next.Dragging = ""
	case ResetConfig:
		next.Visible = append([]string(nil), a.Config.Visible...)
		next.Order = append([]string(nil), a.Config.Order...)
		next.Touched = false
		next.Dragging = ""
	}
	return next
}

// Reorder moves from to the index to currently occupies; all other fields keep
// their relative order. Unknown fields or from == to return an unchanged copy.
func Reorder(order []string, from, to string) []string {
	out := append([]string(nil), order...)
	fi := indexOf(out, from)
	ti := indexOf(out, to)
	if fi < 0 || ti < 0 || fi == ti {
		return out
	}
	out = append(out[:fi], out[fi+1:]...)
	out = append(out[:ti], append([]string{from}, out[ti:]...)...)
	return out
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

// inRegistryOrder returns the registered members of fields in registry order.
func inRegistryOrder(reg *Registry, fields []string) []string {
	if reg == nil {
		return fields
	}
	out := make([]string, 0, len(fields))
	for _, f := range reg.Fields() {
		if indexOf(fields, f) >= 0 {
			out = append(out, f)
		}
	}
	return out
}
