// Package cel compiles the CEL expressions gridkit accepts on the command
// line and in column registry files: row predicates (--where) and per-column
// value formatters and cell renderers.
package cel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/decls"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

const (
	// RowVar is the current row as map(string, dyn).
	RowVar = "row"
	// ValueVar is the cell value a format expression works on.
	ValueVar = "value"
)

// Evaluator compiles expressions against the gridkit environment.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator builds the environment with the strings, encoders, lists and
// math extensions loaded.
func NewEvaluator() (*Evaluator, error) {
	env, err := newGridEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Env returns the underlying environment.
func (e *Evaluator) Env() *cel.Env {
	return e.env
}

func newGridEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	all := []cel.EnvOption{
		cel.Variable(RowVar, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(ValueVar, cel.DynType),
		cel.CrossTypeNumericComparisons(true),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	}
	return cel.NewEnv(append(all, opts...)...)
}

// Program is one compiled expression.
type Program struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. When want is non-nil the expression
// must produce that type (or dyn).
func (e *Evaluator) Compile(expr string, want *cel.Type) (*Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if want != nil {
		out := ast.OutputType()
		if !out.IsExactType(want) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("expression %q yields %s, want %s", expr, out, want)
		}
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// Eval runs the program with row and value bound and returns a Go value.
func (p *Program) Eval(row grid.Row, value any) (any, error) {
	if row == nil {
		row = grid.Row{}
	}
	out, _, err := p.prg.Eval(map[string]any{
		RowVar:   map[string]any(row),
		ValueVar: value,
	})
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	return ToGo(out), nil
}

// String returns the source expression.
func (p *Program) String() string { return p.expr }

// Predicate compiles a boolean row test. A row the expression cannot be
// evaluated against (a missing key, a type mismatch) does not match.
func (e *Evaluator) Predicate(expr string) (func(grid.Row) bool, error) {
	p, err := e.Compile(expr, cel.BoolType)
	if err != nil {
		return nil, err
	}
	return func(row grid.Row) bool {
		v, err := p.Eval(row, nil)
		if err != nil {
			return false
		}
		b, ok := v.(bool)
		return ok && b
	}, nil
}

// ValueFormatter compiles a column format expression over value (and row,
// which is empty here). A failing evaluation renders as the cell error marker.
func (e *Evaluator) ValueFormatter(expr string) (func(any) string, error) {
	p, err := e.Compile(expr, nil)
	if err != nil {
		return nil, err
	}
	return func(v any) string {
		out, err := p.Eval(nil, v)
		if err != nil {
			return grid.CellErrorMarker
		}
		return grid.Text(out)
	}, nil
}

// CellRenderer compiles a column render expression over row.
func (e *Evaluator) CellRenderer(expr string) (func(grid.Row) string, error) {
	p, err := e.Compile(expr, nil)
	if err != nil {
		return nil, err
	}
	return func(row grid.Row) string {
		out, err := p.Eval(row, nil)
		if err != nil {
			return grid.CellErrorMarker
		}
		return grid.Text(out)
	}, nil
}

// ToGo converts CEL values to plain Go values, recursing into lists and maps.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	valuer, ok := val.(interface{ Value() any })
	if !ok {
		return val
	}
	switch inner := valuer.Value().(type) {
	case []ref.Val:
		out := make([]any, len(inner))
		for i, elem := range inner {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(inner))
		for i, elem := range inner {
			out[i] = plain(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(inner))
		for k, elem := range inner {
			out[k] = plain(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(inner))
		for k, elem := range inner {
			out[fmt.Sprint(ToGo(k))] = ToGo(elem)
		}
		return out
	default:
		return inner
	}
}

func plain(v any) any {
	if rv, ok := v.(ref.Val); ok {
		return ToGo(rv)
	}
	return v
}

// Functions lists the callable functions and macros of the environment as
// "name() - usage" entries, sorted.
func (e *Evaluator) Functions() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(entry string) {
		if !seen[entry] {
			seen[entry] = true
			out = append(out, entry)
		}
	}
	for _, fn := range e.env.Functions() {
		if isOperator(fn.Name()) {
			continue
		}
		for _, o := range fn.OverloadDecls() {
			add(fn.Name() + "() - " + usageFromOverload(fn.Name(), o))
		}
	}
	for _, m := range e.env.Macros() {
		if isOperator(m.Function()) {
			continue
		}
		add(m.Function() + "() - macro")
	}
	sort.Strings(out)
	return out
}

func isOperator(name string) bool {
	return strings.HasPrefix(name, "@") || strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_")
}

func typeLabel(t *types.Type) string {
	if t == nil {
		return "any"
	}
	if name := t.DeclaredTypeName(); name != "" {
		return name
	}
	if name := t.TypeName(); name != "" {
		return name
	}
	return "any"
}

func usageFromOverload(name string, o *decls.OverloadDecl) string {
	params := o.ArgTypes()
	labels := make([]string, len(params))
	for i, p := range params {
		labels[i] = typeLabel(p)
	}
	call := name + "(" + strings.Join(labels, ", ") + ")"
	if o.IsMemberFunction() && len(labels) > 0 {
		call = labels[0] + "." + name + "(" + strings.Join(labels[1:], ", ") + ")"
	}
	if rt := o.ResultType(); rt != nil {
		call += " -> " + typeLabel(rt)
	}
	return call
}
