// Package loader reads table rows from JSON, NDJSON, YAML, TOML and CSV.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// Format names an input encoding.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatCSV    Format = "csv"
)

// ValueKey holds a scalar document that is not an object.
const ValueKey = "value"

// ParseFormat validates a --input-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatJSON, FormatNDJSON, FormatYAML, FormatTOML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "jsonl":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("unknown input format %q", s)
}

// FormatFromPath maps a file extension to a format, or FormatAuto.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".csv":
		return FormatCSV
	}
	return FormatAuto
}

// Detect guesses the format of input. CSV is never guessed.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "---") || strings.Contains(input, "\n---") {
		return FormatYAML
	}
	if lines := strings.Split(input, "\n"); len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		if json.Valid([]byte(input)) {
			return FormatJSON
		}
	}
	return FormatYAML
}

// Load parses data into rows.
func Load(data []byte, format Format) ([]grid.Row, error) {
	input := string(bytes.TrimSpace(data))
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}
	if format == FormatAuto {
		format = Detect(input)
	}

	var docs []any
	var err error
	switch format {
	case FormatJSON:
		docs, err = loadJSON(input)
	case FormatNDJSON:
		docs, err = loadNDJSON(input)
	case FormatYAML:
		docs, err = loadYAML(input)
	case FormatTOML:
		docs, err = loadTOML(input)
	case FormatCSV:
		return loadCSV(input)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromDocs(docs), nil
}

// LoadReader reads r to the end and parses it.
func LoadReader(r io.Reader, format Format) ([]grid.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Load(data, format)
}

// LoadFile reads path. With FormatAuto the extension decides, then content
// detection.
func LoadFile(path string, format Format) ([]grid.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto {
		format = FormatFromPath(path)
	}
	rows, err := Load(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// rowsFromDocs flattens parsed documents into rows. A document that is a
// list contributes each element; an object holding exactly one list of
// objects (a TOML array of tables, an API envelope) contributes that list.
func rowsFromDocs(docs []any) []grid.Row {
	var rows []grid.Row
	for _, doc := range docs {
		doc = normalize(doc, 0)
		switch v := doc.(type) {
		case []any:
			for _, elem := range v {
				rows = append(rows, toRow(elem))
			}
		case map[string]any:
			if inner, ok := soleList(v); ok {
				for _, elem := range inner {
					rows = append(rows, toRow(elem))
				}
				continue
			}
			rows = append(rows, grid.Row(v))
		case nil:
		default:
			rows = append(rows, grid.Row{ValueKey: v})
		}
	}
	return rows
}

func soleList(m map[string]any) ([]any, bool) {
	if len(m) != 1 {
		return nil, false
	}
	for _, v := range m {
		list, ok := v.([]any)
		if !ok || len(list) == 0 {
			return nil, false
		}
		for _, elem := range list {
			if _, ok := elem.(map[string]any); !ok {
				return nil, false
			}
		}
		return list, true
	}
	return nil, false
}

func toRow(v any) grid.Row {
	if m, ok := v.(map[string]any); ok {
		return grid.Row(m)
	}
	return grid.Row{ValueKey: v}
}

func loadJSON(input string) ([]any, error) {
	var data any
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return []any{data}, nil
}

// loadYAML handles single and multi-document streams.
func loadYAML(input string) ([]any, error) {
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var doc any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in YAML input")
	}
	return docs, nil
}

// loadNDJSON parses one JSON value per line. Lines that are not JSON are
// kept as plain string values.
func loadNDJSON(input string) ([]any, error) {
	var docs []any
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			docs = append(docs, line)
			continue
		}
		docs = append(docs, obj)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	return docs, nil
}

func loadTOML(input string) ([]any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{data}, nil
}

// loadCSV reads a header row followed by records. Cells that parse as
// integers, floats or booleans are typed; empty cells are left out of the row.
func loadCSV(input string) ([]grid.Row, error) {
	r := csv.NewReader(strings.NewReader(input))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no data found in input")
	}
	header := records[0]
	rows := make([]grid.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(grid.Row, len(header))
		for i, cell := range rec {
			if i >= len(header) || cell == "" {
				continue
			}
			row[header[i]] = typedCell(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func typedCell(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}

// isLikelyNDJSON requires more than one non-empty line and a majority that
// open like a JSON object or array.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

var (
	// [section], [[array]], ["quoted"], [a.b]; not JSON arrays like [1, 2].
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

func isLikelyTOML(input string) bool {
	sections, keyValues, nonEmpty := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			keyValues++
		}
	}
	return sections > 0 || (nonEmpty > 0 && keyValues > nonEmpty/2)
}
