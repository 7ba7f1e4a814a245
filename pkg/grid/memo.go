package grid

import (
	"reflect"
	"sort"
	"strings"
)

// Pipeline memoizes Derive for repeated renders of an unchanged state.
// Derive is pure, so the cache only saves work; Invalidate must be called
// when the registry, options, or the contents of the row slice change.
type Pipeline struct {
	key    memoKey
	result Result
	valid  bool
}

type memoKey struct {
	rows     uintptr
	rowCount int
	search   string
	filters  string
	sortKey  string
	sortDir  Direction
	page     int
	pageSize int
	visible  string
	order    string
}

// Derive returns the cached result when the inputs match the previous call.
func (p *Pipeline) Derive(reg *Registry, rows []Row, s State, opts Options) Result {
	k := newMemoKey(rows, s)
	if p.valid && p.key == k {
		return p.result
	}
	p.result = Derive(reg, rows, s, opts)
	p.key = k
	p.valid = true
	return p.result
}

// Invalidate drops the cached result.
func (p *Pipeline) Invalidate() {
	p.valid = false
}

func newMemoKey(rows []Row, s State) memoKey {
	k := memoKey{
		rowCount: len(rows),
		search:   s.Search,
		page:     s.Page,
		pageSize: s.PageSize,
		visible:  strings.Join(s.Visible, "\x00"),
		order:    strings.Join(s.Order, "\x00"),
	}
	if len(rows) > 0 {
		k.rows = reflect.ValueOf(rows).Pointer()
	}
	if s.Sort != nil {
		k.sortKey = s.Sort.Key
		k.sortDir = s.Sort.Direction
	}
	if len(s.Filters) > 0 {
		fields := make([]string, 0, len(s.Filters))
		for f := range s.Filters {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		var b strings.Builder
		for _, f := range fields {
			b.WriteString(f)
			b.WriteByte(0)
			b.WriteString(s.Filters[f])
			b.WriteByte(0)
		}
		k.filters = b.String()
	}
	return k
}
