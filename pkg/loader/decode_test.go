package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

func TestNormalize_TypedContainers(t *testing.T) {
	in := map[string]any{
		"tags":  []string{"a", "b"},
		"attrs": map[string]string{"k": "v"},
		"byInt": map[any]any{1: "one"},
		"raw":   []byte("x"),
	}
	got := normalize(in, 0).(map[string]any)
	assert.Equal(t, []any{"a", "b"}, got["tags"])
	assert.Equal(t, map[string]any{"k": "v"}, got["attrs"])
	assert.Equal(t, map[string]any{"1": "one"}, got["byInt"])
	assert.Equal(t, []byte("x"), got["raw"])
}

func TestLoad_YAMLNonStringKeys(t *testing.T) {
	rows, err := Load([]byte("- id: 1\n  codes:\n    200: ok\n"), FormatYAML)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]any{"200": "ok"}, rows[0]["codes"])
}

type client struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Secret string `json:"-"`
}

func TestLoadObject(t *testing.T) {
	rows, err := LoadObject([]client{{ID: 1, Name: "Acme", Secret: "s"}, {ID: 2, Name: "Globex"}})
	require.NoError(t, err)
	assert.Equal(t, []grid.Row{{"id": 1.0, "name": "Acme"}, {"id": 2.0, "name": "Globex"}}, rows)

	rows, err = LoadObject(&client{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, []grid.Row{{"id": 3.0, "name": ""}}, rows)

	rows, err = LoadObject(`[{"a": 1}]`)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	same := []grid.Row{{"a": 1}}
	rows, err = LoadObject(same)
	require.NoError(t, err)
	assert.Equal(t, same, rows)

	_, err = LoadObject(nil)
	assert.Error(t, err)
	var nilSlice []client
	_, err = LoadObject(nilSlice)
	assert.Error(t, err)
	_, err = LoadObject(func() {})
	assert.Error(t, err)
}
