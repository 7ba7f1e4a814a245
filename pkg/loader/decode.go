package loader

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

const maxNormalizeDepth = 32

// normalize rewrites typed maps and slices into map[string]any and []any so
// rows look the same whichever decoder produced them. YAML maps with
// non-string keys get their keys stringified.
func normalize(node any, depth int) any {
	if depth > maxNormalizeDepth || node == nil {
		return node
	}
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			v[k] = normalize(val, depth+1)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = normalize(val, depth+1)
		}
		return v
	case string, bool, int, int64, uint64, float64:
		return v
	}

	rv := reflect.ValueOf(node)
	//exhaustive:ignore // only containers are rewritten
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			key := fmt.Sprint(k.Interface())
			if k.Kind() == reflect.String {
				key = k.String()
			}
			out[key] = normalize(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return node
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface(), depth+1)
		}
		return out
	default:
		return node
	}
}

// LoadObject turns an in-memory value into rows: a slice of maps or structs,
// a single map or struct, or a string/[]byte holding any supported format.
// Structs go through encoding/json so their json tags name the columns.
func LoadObject(value any) ([]grid.Row, error) {
	if value == nil {
		return nil, fmt.Errorf("object input is nil")
	}
	switch v := value.(type) {
	case string:
		return Load([]byte(v), FormatAuto)
	case []byte:
		return Load(v, FormatAuto)
	case []grid.Row:
		return v, nil
	case grid.Row:
		return []grid.Row{v}, nil
	}

	rv := reflect.ValueOf(value)
	//exhaustive:ignore // nil checks only apply to reference kinds
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		if rv.IsNil() {
			return nil, fmt.Errorf("object input is nil")
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %T to rows: %w", value, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot convert %T to rows: %w", value, err)
	}
	return rowsFromDocs([]any{doc}), nil
}
