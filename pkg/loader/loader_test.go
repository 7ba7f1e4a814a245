package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		want   []grid.Row
	}{
		{
			name:  "json array",
			input: `[{"name": "Alice", "age": 30}, {"name": "Bob"}]`,
			want:  []grid.Row{{"name": "Alice", "age": 30.0}, {"name": "Bob"}},
		},
		{
			name:  "json object is one row",
			input: `{"name": "Alice"}`,
			want:  []grid.Row{{"name": "Alice"}},
		},
		{
			name:  "json envelope",
			input: `{"items": [{"id": 1}, {"id": 2}]}`,
			want:  []grid.Row{{"id": 1.0}, {"id": 2.0}},
		},
		{
			name:  "ndjson",
			input: "{\"id\": 1}\r\n\n{\"id\": 2}\nnot json",
			want:  []grid.Row{{"id": 1.0}, {"id": 2.0}, {ValueKey: "not json"}},
		},
		{
			name:  "yaml list",
			input: "- name: Alice\n  age: 30\n- name: Bob\n  age: 25\n",
			want:  []grid.Row{{"name": "Alice", "age": 30}, {"name": "Bob", "age": 25}},
		},
		{
			name:  "multi-document yaml",
			input: "---\nname: a\n---\nname: b\n",
			want:  []grid.Row{{"name": "a"}, {"name": "b"}},
		},
		{
			name:  "toml array of tables",
			input: "[[clients]]\nname = \"Acme\"\nseats = 3\n\n[[clients]]\nname = \"Globex\"\nseats = 10\n",
			want:  []grid.Row{{"name": "Acme", "seats": int64(3)}, {"name": "Globex", "seats": int64(10)}},
		},
		{
			name:   "csv",
			input:  "name,age,active,score\nAlice,30,true,1.5\nBob,,false,x\n",
			format: FormatCSV,
			want: []grid.Row{
				{"name": "Alice", "age": int64(30), "active": true, "score": 1.5},
				{"name": "Bob", "active": false, "score": "x"},
			},
		},
		{
			name:  "scalar list",
			input: `[1, "two"]`,
			want:  []grid.Row{{ValueKey: 1.0}, {ValueKey: "two"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]byte("   \n"), FormatAuto)
	assert.Error(t, err)
	_, err = Load([]byte(`{"a": `), FormatJSON)
	assert.Error(t, err)
	_, err = Load([]byte("a = "), FormatTOML)
	assert.Error(t, err)
	_, err = Load([]byte("a,b\n\"unterminated"), FormatCSV)
	assert.Error(t, err)
	_, err = Load([]byte("x"), Format("xml"))
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{`[{"a": 1}]`, FormatJSON},
		{"{\"a\": 1}\n{\"a\": 2}", FormatNDJSON},
		{"[server]\nhost = \"x\"", FormatTOML},
		{"name = \"x\"\nport = 1", FormatTOML},
		{"- a: 1\n- a: 2", FormatYAML},
		{"---\na: 1", FormatYAML},
		{"{invalid}", FormatYAML},
		{"[1, 2, 3]", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "JSON": FormatJSON, "yml": FormatYAML, "jsonl": FormatNDJSON, "csv": FormatCSV} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestLoadFile_UsesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nAlice\nBob\n"), 0o600))

	rows, err := LoadFile(path, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, []grid.Row{{"name": "Alice"}, {"name": "Bob"}}, rows)

	_, err = LoadFile(filepath.Join(dir, "missing.json"), FormatAuto)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadFile(bad, FormatAuto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestLoadReader(t *testing.T) {
	rows, err := LoadReader(strings.NewReader(`[{"a": 1}]`), FormatAuto)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
