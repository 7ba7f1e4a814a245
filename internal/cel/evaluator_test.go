package cel

import (
	"strings"
	"testing"
	"time"

	"github.com/google/cel-go/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

func newEval(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator()
	require.NoError(t, err)
	require.NotNil(t, e.Env())
	return e
}

func TestPredicate(t *testing.T) {
	e := newEval(t)
	rows := []grid.Row{
		{"name": "Alice", "age": 30, "status": "open"},
		{"name": "Bob", "age": 25.0, "status": "closed"},
		{"name": "Carol", "status": "open"},
	}

	tests := []struct {
		expr string
		want []string
	}{
		{`row.status == "open"`, []string{"Alice", "Carol"}},
		{`row.age > 26`, []string{"Alice"}},
		{`has(row.age) && row.age < 40`, []string{"Alice", "Bob"}},
		{`row.name.startsWith("B") || row.name.lowerAscii().contains("car")`, []string{"Bob", "Carol"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			pred, err := e.Predicate(tt.expr)
			require.NoError(t, err)
			var got []string
			for _, r := range rows {
				if pred(r) {
					got = append(got, r["name"].(string))
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicate_Errors(t *testing.T) {
	e := newEval(t)
	_, err := e.Predicate(`row.name +`)
	assert.Error(t, err)
	_, err = e.Predicate(`"not a bool"`)
	assert.Error(t, err)
	_, err = e.Predicate("   ")
	assert.Error(t, err)
}

func TestValueFormatter(t *testing.T) {
	e := newEval(t)
	money, err := e.ValueFormatter(`"$" + string(value)`)
	require.NoError(t, err)
	assert.Equal(t, "$12.5", money(12.5))

	upper, err := e.ValueFormatter(`value.upperAscii()`)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", upper("open"))
	assert.Equal(t, grid.CellErrorMarker, upper(42), "no upperAscii on int")
}

func TestCellRenderer(t *testing.T) {
	e := newEval(t)
	r, err := e.CellRenderer(`row.first + " " + row.last`)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", r(grid.Row{"first": "Ada", "last": "Lovelace"}))
	assert.Equal(t, grid.CellErrorMarker, r(grid.Row{"first": "Ada"}))

	col := grid.Column{Field: "name", CellRenderer: r}
	assert.Equal(t, "Ada Lovelace", grid.RenderCell(grid.Row{"first": "Ada", "last": "Lovelace"}, col))
}

func TestProgramEval_Types(t *testing.T) {
	e := newEval(t)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		expr string
		row  grid.Row
		want any
	}{
		{`row.n + 1`, grid.Row{"n": 41}, int64(42)},
		{`row.tags.map(t, t.upperAscii())`, grid.Row{"tags": []any{"a", "b"}}, []any{"A", "B"}},
		{`{"k": row.n}`, grid.Row{"n": 1}, map[string]any{"k": int64(1)}},
		{`row.at.getFullYear("UTC")`, grid.Row{"at": ts}, int64(2024)},
		{`math.greatest(1, 5, 3)`, nil, int64(5)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := e.Compile(tt.expr, nil)
			require.NoError(t, err)
			got, err := p.Eval(tt.row, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToGo_Scalars(t *testing.T) {
	assert.Nil(t, ToGo(nil))
	assert.Nil(t, ToGo(types.NullValue))
	assert.Equal(t, true, ToGo(types.Bool(true)))
	assert.Equal(t, uint64(7), ToGo(types.Uint(7)))
	assert.Equal(t, 1.5, ToGo(types.Double(1.5)))
	assert.Equal(t, []byte("x"), ToGo(types.Bytes("x")))
}

func TestFunctions(t *testing.T) {
	funcs := newEval(t).Functions()
	require.Greater(t, len(funcs), 10)
	joined := strings.Join(funcs, "\n")
	assert.Contains(t, joined, "upperAscii() - string.upperAscii() -> string")
	assert.Contains(t, joined, "filter() - macro")
	for _, f := range funcs {
		assert.False(t, strings.HasPrefix(f, "@"), f)
		assert.False(t, strings.HasPrefix(f, "_"), f)
	}
}
