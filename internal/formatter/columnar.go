package formatter

import (
	"fmt"
	"strconv"
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// Sort indicators appended to the sorted column's header.
const (
	AscIndicator  = " ▲"
	DescIndicator = " ▼"
)

// TableOptions configures RenderTable.
type TableOptions struct {
	// Width is the total width available. 0 uses the terminal width.
	Width int
	// RowNumbers adds a leading # column counting across pages.
	RowNumbers bool
	// Sort marks the sorted column header.
	Sort   *grid.SortState
	Styles Styles
	// EmptyText replaces the body when no row matches.
	EmptyText string
	// Title heads HTML output.
	Title string
}

// RenderTable renders res as an aligned text table followed by the pager
// line when res.ShowPager is set.
func RenderTable(res grid.Result, opts TableOptions) string {
	if len(res.Columns) == 0 {
		return opts.Styles.Muted.Render("no visible columns") + "\n"
	}
	width := opts.Width
	if width <= 0 {
		width = TerminalWidth()
	}

	headers := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		headers[i] = c.Header() + sortIndicator(c.Field, opts.Sort)
	}
	cells := res.Cells()
	for _, row := range cells {
		for i := range row {
			row[i] = CellText(row[i])
		}
	}

	firstNum := (res.Page-1)*res.PageSize + 1
	if res.PageSize <= 0 || res.Page <= 0 {
		firstNum = 1
	}
	numWidth := 0
	if opts.RowNumbers {
		numWidth = max(len(strconv.Itoa(firstNum+len(cells)-1)), 1)
	}

	available := width
	if numWidth > 0 {
		available -= numWidth + sepWidth
	}
	widths := ColumnWidths(headers, cells, res.Columns, available)

	var b strings.Builder
	sep := strings.Repeat(" ", sepWidth)

	parts := make([]string, 0, len(headers)+1)
	if numWidth > 0 {
		parts = append(parts, opts.Styles.Header.Render(padRight("#", numWidth)))
	}
	for i, h := range headers {
		parts = append(parts, opts.Styles.Header.Render(padRight(h, widths[i])))
	}
	b.WriteString(strings.Join(parts, sep) + "\n")

	lineWidth := sum(widths) + sepWidth*(len(widths)-1)
	if numWidth > 0 {
		lineWidth += numWidth + sepWidth
	}
	b.WriteString(opts.Styles.Separator.Render(strings.Repeat("─", lineWidth)) + "\n")

	if len(cells) == 0 {
		empty := opts.EmptyText
		if empty == "" {
			empty = "no matching rows"
		}
		b.WriteString(opts.Styles.Muted.Render(empty) + "\n")
	}
	for r, row := range cells {
		parts = parts[:0]
		if numWidth > 0 {
			parts = append(parts, opts.Styles.RowNumber.Render(padLeft(strconv.Itoa(firstNum+r), numWidth)))
		}
		for i, val := range row {
			if res.Columns[i].AlignRight {
				val = padLeft(val, widths[i])
			} else {
				val = padRight(val, widths[i])
			}
			parts = append(parts, opts.Styles.Cell.Render(val))
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")
	}

	if res.ShowPager {
		b.WriteString(opts.Styles.Pager.Render(PagerLine(res)) + "\n")
	}
	return b.String()
}

// PagerLine describes the pagination controls and position, e.g.
// "« first  ‹ prev  page 2 of 5  next ›  last »  ·  10 per page  ·  42 rows".
func PagerLine(res grid.Result) string {
	first, prev, next, last := "« first", "‹ prev", "next ›", "last »"
	if res.Page <= 1 {
		first, prev = dim(first), dim(prev)
	}
	if res.Page >= res.TotalPages {
		next, last = dim(next), dim(last)
	}
	return fmt.Sprintf("%s  %s  page %d of %d  %s  %s  ·  %d per page  ·  %d rows",
		first, prev, res.Page, res.TotalPages, next, last, res.PageSize, res.Matched)
}

// dim marks a control that cannot be used from the current page.
func dim(s string) string {
	return strings.Repeat(" ", runewidth.StringWidth(s))
}

func sortIndicator(field string, s *grid.SortState) string {
	if s == nil || s.Key != field {
		return ""
	}
	if s.Direction == grid.Desc {
		return DescIndicator
	}
	return AscIndicator
}

// ColumnWidths sizes each column to its widest cell, caps columns that carry
// a width hint, and shrinks the widest unhinted columns first when the table
// does not fit in available.
func ColumnWidths(headers []string, cells [][]string, cols []grid.Column, available int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range cells {
		for i, v := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(v))
			}
		}
	}
	for i := range widths {
		if i < len(cols) && cols[i].Width > 0 {
			widths[i] = min(widths[i], max(cols[i].Width, minColWidth))
		}
	}

	usable := available - sepWidth*(len(widths)-1)
	if usable <= 0 || sum(widths) <= usable {
		return widths
	}
	for i := range widths {
		if i >= len(cols) || cols[i].Width == 0 {
			widths[i] = min(widths[i], maxAutoWidth)
		}
	}

	excess := sum(widths) - usable
	hinted := func(i int) bool { return i < len(cols) && cols[i].Width > 0 }
	// unhinted columns give up width first, widest first
	for _, phase := range []bool{false, true} {
		for excess > 0 {
			best := -1
			for i := range widths {
				if hinted(i) != phase || widths[i] <= minColWidth {
					continue
				}
				if best < 0 || widths[i] > widths[best] {
					best = i
				}
			}
			if best < 0 {
				break
			}
			widths[best]--
			excess--
		}
	}
	return widths
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
