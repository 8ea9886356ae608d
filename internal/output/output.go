package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// MaxCellWidth is the display width table cells are truncated to.
const MaxCellWidth = 48

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// Pair is one labelled value of a detail view.
type Pair struct {
	Label string
	Value string
}

// Table is the tabular rendering of a result.
type Table struct {
	Header []string
	Rows   [][]string
	Footer string
}

// Result is a command result. Data is rendered for json and yaml. The table
// format prints Pairs followed by Table, and falls back to JSON when neither
// is set. An empty Table is omitted after Pairs.
type Result struct {
	Data  any
	Pairs []Pair
	Table *Table
}

// Write renders r in the requested format.
func Write(w io.Writer, format Format, r Result) error {
	var rendered string
	var err error

	switch format {
	case FormatJSON:
		rendered, err = renderJSON(r.Data)
	case FormatYAML:
		rendered, err = renderYAML(r.Data)
	default:
		var sections []string
		if len(r.Pairs) > 0 {
			sections = append(sections, strings.TrimRight(renderPairs(r.Pairs), "\n"))
		}
		if r.Table != nil && (len(r.Table.Rows) > 0 || len(sections) == 0) {
			sections = append(sections, strings.TrimRight(renderTable(r.Table), "\n"))
		}
		if len(sections) == 0 {
			rendered, err = renderJSON(r.Data)
		} else {
			rendered = strings.Join(sections, "\n\n")
		}
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, strings.TrimRight(rendered, "\n"))
	return err
}

func renderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json: %w", err)
	}
	return string(data), nil
}

// renderYAML goes through JSON first so field names follow the json tags
// of the API types.
func renderYAML(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}

	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	return string(out), nil
}

func renderTable(tbl *Table) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	if len(tbl.Header) > 0 {
		header := make(table.Row, len(tbl.Header))
		for i, h := range tbl.Header {
			header[i] = h
		}
		t.AppendHeader(header)
	}

	for _, row := range tbl.Rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			// Newlines would break table rows
			r[i] = Truncate(strings.ReplaceAll(cell, "\n", " "), MaxCellWidth)
		}
		t.AppendRow(r)
	}

	if tbl.Footer != "" && len(tbl.Header) > 0 {
		footer := make(table.Row, len(tbl.Header))
		for i := range footer {
			footer[i] = ""
		}
		footer[len(footer)-1] = tbl.Footer
		t.AppendFooter(footer)
	}

	return t.Render()
}

func renderPairs(pairs []Pair) string {
	width := 0
	for _, p := range pairs {
		if p.Value == "" {
			continue
		}
		if w := DisplayWidth(p.Label); w > width {
			width = w
		}
	}

	var b strings.Builder
	for _, p := range pairs {
		if p.Value == "" {
			continue
		}
		b.WriteString(PadToWidth(p.Label, width))
		b.WriteString("  ")
		b.WriteString(p.Value)
		b.WriteString("\n")
	}
	return b.String()
}
