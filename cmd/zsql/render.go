package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"zgo.at/zsql"
)

func render(w io.Writer, r *zsql.Result, format string) error {
	switch format {
	case "json":
		return renderJSON(w, r.Columns(), r.Slices())
	case "csv":
		return renderCSV(w, r.Columns(), r.Slices())
	case "table", "":
		return renderTable(w, r.Columns(), r.Slices())
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, vals := range rows {
		row := make(table.Row, len(vals))
		for i, v := range vals {
			row[i] = cell(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	word := "rows"
	if len(rows) == 1 {
		word = "row"
	}
	fmt.Fprintf(w, "(%d %s)\n", len(rows), word)
	return nil
}

func renderJSON(w io.Writer, cols []string, rows [][]any) error {
	out := make([]map[string]any, 0, len(rows))
	for _, vals := range rows {
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			m[c] = v
		}
		out = append(out, m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func renderCSV(w io.Writer, cols []string, rows [][]any) error {
	fmt.Fprintln(w, strings.Join(cols, ","))
	for _, vals := range rows {
		fields := make([]string, len(vals))
		for i, v := range vals {
			fields[i] = escapeCSV(cell(v))
		}
		fmt.Fprintln(w, strings.Join(fields, ","))
	}
	return nil
}

// cell formats one value for table and csv output.
func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
