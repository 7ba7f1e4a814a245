package grid

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Row is one record: field name to value. Values may be strings, numbers,
// booleans, time.Time, nil, or nested maps/slices.
type Row map[string]any

// Text coerces a value to the string used for search, filtering, and raw
// cell display. nil becomes the empty string.
func Text(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		if tm, ok := v.(time.Time); ok {
			return tm.Format(time.RFC3339)
		}
		return t.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(t)
	case map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only composite kinds need JSON
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return ""
		}
		return Text(rv.Elem().Interface())
	}
	return fmt.Sprintf("%v", v)
}

// containsFold reports whether needle occurs in haystack ignoring case.
// needle must already be lower-cased.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
