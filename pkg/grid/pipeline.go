package grid

import (
	"sort"
	"strings"
)

// Result is everything a host needs to render one pass of the table.
type Result struct {
	// Rows is the current page.
	Rows []Row
	// Columns are the visible columns in display order.
	Columns []Column
	// Matched counts rows after search, filters and sort, before paging.
	Matched    int
	Page       int
	TotalPages int
	PageSize   int
	// ShowPager is true when pagination is on and more than one page exists.
	ShowPager bool
}

// Derive runs the full pipeline: predicate, global search, column filters,
// sort, pagination, column projection. It has no side effects.
func Derive(reg *Registry, rows []Row, s State, opts Options) Result {
	matched := Match(rows, s, opts)
	sorted := SortRows(matched, s.Sort)

	res := Result{
		Columns:  Project(reg, s.Order, s.Visible),
		Matched:  len(sorted),
		PageSize: s.PageSize,
	}
	if !opts.Pagination {
		res.Rows = sorted
		res.Page = 1
		res.TotalPages = 1
		return res
	}
	res.Rows, res.Page, res.TotalPages = Paginate(sorted, s.Page, s.PageSize)
	res.ShowPager = res.TotalPages > 1
	return res
}

// Match applies the host predicate, global search and column filters, in
// that order, preserving input order.
func Match(rows []Row, s State, opts Options) []Row {
	out := rows
	if opts.Where != nil {
		out = keep(out, opts.Where)
	}
	if opts.GlobalSearch {
		out = Search(out, s.Search)
	}
	return Filter(out, s.Filters)
}

// Search keeps rows where any value contains text, case-insensitively.
// Every property of the row is considered, rendered or not.
func Search(rows []Row, text string) []Row {
	if text == "" {
		return rows
	}
	needle := strings.ToLower(text)
	return keep(rows, func(r Row) bool {
		for _, v := range r {
			if containsFold(Text(v), needle) {
				return true
			}
		}
		return false
	})
}

// Filter keeps rows matching every non-empty per-column filter.
func Filter(rows []Row, filters map[string]string) []Row {
	active := make(map[string]string, len(filters))
	for field, text := range filters {
		if text != "" {
			active[field] = strings.ToLower(text)
		}
	}
	if len(active) == 0 {
		return rows
	}
	return keep(rows, func(r Row) bool {
		for field, needle := range active {
			if !containsFold(Text(r[field]), needle) {
				return false
			}
		}
		return true
	})
}

// SortRows returns a stably sorted copy. Ties keep input order in both
// directions. A nil sort returns rows unchanged.
func SortRows(rows []Row, s *SortState) []Row {
	if s == nil || s.Key == "" {
		return rows
	}
	out := append([]Row(nil), rows...)
	key := s.Key
	desc := s.Direction == Desc
	sort.SliceStable(out, func(i, j int) bool {
		c := Compare(out[i][key], out[j][key])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// Paginate slices one page and returns it with the clamped page number and
// the total page count (at least 1).
func Paginate(rows []Row, page, size int) ([]Row, int, int) {
	if size <= 0 {
		return rows, 1, 1
	}
	total := (len(rows) + size - 1) / size
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * size
	end := start + size
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end], page, total
}

// Project resolves order, restricted to visible, back to registered columns.
// Fields missing from the registry are dropped.
func Project(reg *Registry, order, visible []string) []Column {
	shown := make(map[string]bool, len(visible))
	for _, f := range visible {
		shown[f] = true
	}
	out := make([]Column, 0, len(order))
	for _, f := range order {
		if !shown[f] {
			continue
		}
		if col, ok := reg.Lookup(f); ok {
			out = append(out, col)
		}
	}
	return out
}

func keep(rows []Row, pred func(Row) bool) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
