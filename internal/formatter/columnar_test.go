package formatter

import (
	"strings"
	"testing"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

func sampleRegistry() *grid.Registry {
	return grid.MustRegistry(
		grid.Column{Field: "name", HeaderName: "Name", Sortable: true, Filterable: true},
		grid.Column{Field: "age", HeaderName: "Age", Sortable: true, AlignRight: true},
		grid.Column{Field: "city", HeaderName: "City", Filterable: true},
	)
}

func sampleRows() []grid.Row {
	return []grid.Row{
		{"name": "Alice", "age": 30, "city": "Paris"},
		{"name": "Bob", "age": 25, "city": "London"},
		{"name": "Carol", "age": 41, "city": "Rome"},
	}
}

func derive(t *testing.T, s grid.State, opts grid.Options) grid.Result {
	t.Helper()
	reg := sampleRegistry()
	s = grid.Reduce(reg, s, grid.LoadConfig{Config: grid.DefaultConfig(reg)})
	return grid.Derive(reg, sampleRows(), s, opts)
}

func plainOpts() TableOptions {
	return TableOptions{Width: 80, Styles: PlainStyles()}
}

func TestRenderTable_Basic(t *testing.T) {
	res := derive(t, grid.InitialState(10), grid.DefaultOptions())
	out := RenderTable(res, plainOpts())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5, "header, rule, three rows, no pager")

	assert.Equal(t, "Name   Age  City", strings.TrimRight(lines[0], " "))
	assert.True(t, strings.HasPrefix(lines[1], "─"))
	assert.Equal(t, "Alice   30  Paris", lines[2])
	assert.Equal(t, "Bob     25  London", lines[3])
}

func TestRenderTable_SortIndicatorAndRowNumbers(t *testing.T) {
	s := grid.InitialState(2)
	s = grid.Reduce(sampleRegistry(), s, grid.ToggleSort{Field: "age"})
	s = grid.Reduce(sampleRegistry(), s, grid.ToggleSort{Field: "age"})
	s = grid.Reduce(sampleRegistry(), s, grid.SetPage{Page: 2})
	opts := grid.DefaultOptions()
	opts.PageSizes = []int{2}
	opts.DefaultPageSize = 2
	res := derive(t, s, opts)

	to := plainOpts()
	to.RowNumbers = true
	to.Sort = s.Sort
	out := RenderTable(res, to)

	assert.Contains(t, out, "Age ▼")
	assert.Contains(t, out, "3  Bob")
	assert.Contains(t, out, "page 2 of 2")
	assert.Contains(t, out, "2 per page")
	assert.Contains(t, out, "3 rows")
	assert.Contains(t, out, "« first")
	assert.NotContains(t, out, "next ›", "no next from the last page")
}

func TestRenderTable_Empty(t *testing.T) {
	s := grid.InitialState(10)
	s.Search = "zzz"
	res := derive(t, s, grid.DefaultOptions())
	assert.Contains(t, RenderTable(res, plainOpts()), "no matching rows")

	to := plainOpts()
	to.EmptyText = "nothing here"
	assert.Contains(t, RenderTable(res, to), "nothing here")

	assert.Contains(t, RenderTable(grid.Result{}, plainOpts()), "no visible columns")
}

func TestRenderTable_MultilineCells(t *testing.T) {
	reg := grid.MustRegistry(grid.Column{Field: "note"})
	res := grid.Derive(reg, []grid.Row{{"note": "a\nb"}}, grid.Reduce(reg, grid.InitialState(10), grid.LoadConfig{Config: grid.DefaultConfig(reg)}), grid.DefaultOptions())
	out := RenderTable(res, plainOpts())
	assert.Contains(t, out, "a b")
}

func TestColumnWidths(t *testing.T) {
	cols := []grid.Column{{Field: "a"}, {Field: "b", Width: 5}}
	headers := []string{"a", "b"}
	cells := [][]string{{strings.Repeat("x", 60), strings.Repeat("y", 30)}}

	assert.Equal(t, []int{60, 5}, ColumnWidths(headers, cells, cols, 200), "hint caps even when it fits")

	got := ColumnWidths(headers, cells, cols, 30)
	assert.Equal(t, 5, got[1], "hinted column keeps its width")
	assert.LessOrEqual(t, got[0]+got[1]+sepWidth, 30)

	tiny := ColumnWidths(headers, cells, cols, 4)
	assert.GreaterOrEqual(t, tiny[0], minColWidth)
}

func TestTruncateAndPad(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdefgh", 2))
	assert.Equal(t, "日本...", truncate("日本語テキスト", 7))
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "   ab", padLeft("ab", 5))
	assert.Equal(t, 5, runewidth.StringWidth(padRight("日本語テキスト", 5)))
}

func TestPagerLine(t *testing.T) {
	line := PagerLine(grid.Result{Page: 1, TotalPages: 3, PageSize: 10, Matched: 25})
	assert.NotContains(t, line, "« first")
	assert.Contains(t, line, "next ›")
	assert.Contains(t, line, "page 1 of 3")
}
