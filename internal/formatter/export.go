package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// Format names an output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates an -o value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatMarkdown, FormatHTML:
		return f, nil
	case "", "text":
		return FormatTable, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q: want table, csv, json, yaml, markdown or html", s)
}

// Write renders res to w in format. Only the current page is written; the
// pager line appears in table output only.
func Write(w io.Writer, format Format, res grid.Result, opts TableOptions) error {
	switch format {
	case FormatTable, "":
		_, err := io.WriteString(w, RenderTable(res, opts))
		return err
	case FormatCSV:
		return writeCSV(w, res)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records(res))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(res)); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(res))
		return err
	case FormatHTML:
		t := opts.Title
		if t == "" {
			t = "gridkit"
		}
		_, err := w.Write(HTML(res, t))
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writeCSV(w io.Writer, res grid.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(res.Headers()); err != nil {
		return err
	}
	if err := cw.WriteAll(res.Cells()); err != nil {
		return err
	}
	return cw.Error()
}

// record keeps the projected column order when encoded.
type record struct {
	keys   []string
	values []any
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for i, k := range r.keys {
		var v yaml.Node
		if err := v.Encode(r.values[i]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &v)
	}
	return node, nil
}

// records keys each visible field to its raw value, or to the rendered text
// when the column formats or renders its cells.
func records(res grid.Result) []record {
	fields := res.Fields()
	out := make([]record, len(res.Rows))
	for i, row := range res.Rows {
		rec := record{keys: fields, values: make([]any, len(res.Columns))}
		for j, col := range res.Columns {
			if col.ValueFormatter != nil || col.CellRenderer != nil {
				rec.values[j] = grid.RenderCell(row, col)
			} else {
				rec.values[j] = row[col.Field]
			}
		}
		out[i] = rec
	}
	return out
}

// Markdown renders res as a pipe table.
func Markdown(res grid.Result) string {
	var b strings.Builder
	headers := res.Headers()
	if len(headers) == 0 {
		return ""
	}
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			b.WriteString(" " + escapeMarkdown(c) + " |")
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	b.WriteString("|")
	for _, c := range res.Columns {
		if c.AlignRight {
			b.WriteString(" ---: |")
		} else {
			b.WriteString(" --- |")
		}
	}
	b.WriteString("\n")
	for _, row := range res.Cells() {
		writeRow(row)
	}
	return b.String()
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>").Replace(s)
}

// HTML renders res as a complete HTML page holding one table.
func HTML(res grid.Result, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(Markdown(res)))
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage,
		Title: title,
	})
	return markdown.Render(doc, renderer)
}
