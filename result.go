package zsql

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"zgo.at/zstd/zbyte"
)

// Shape selects how a row is represented when reading from a Result.
type Shape uint8

const (
	ShapeRow   Shape = iota // Row
	ShapeSlice              // []any, in column order
	ShapeMap                // map[string]any, keyed by column name
)

func (s Shape) String() string {
	switch s {
	case ShapeRow:
		return "row"
	case ShapeSlice:
		return "slice"
	case ShapeMap:
		return "map"
	default:
		return "(unknown)"
	}
}

// Result is a fully read result set.
//
// The rows are kept in memory, so a Result stays usable after the next query
// runs. A cursor makes Row hand out successive rows; reading by offset never
// moves the cursor.
type Result struct {
	cols     []string
	rows     []Row
	cursor   int
	fromRows bool
	affected int64
}

// Row is a single row in a Result.
type Row struct {
	cols []string
	vals []any
}

// materialize reads rows to completion; values are the driver's native
// types.
func materialize(rows *sql.Rows) (*Result, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	r := &Result{cols: cols, fromRows: true}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r.rows = append(r.rows, Row{cols: cols, vals: vals})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// Columns returns the column names, in select order.
func (r *Result) Columns() []string { return r.cols }

// Len returns the number of rows.
func (r *Result) Len() int { return len(r.rows) }

// RowsAffected returns the affected-row count the engine reported; it's 0
// for statements that return rows.
func (r *Result) RowsAffected() int64 { return r.affected }

// NumRows reports the number of rows returned, or affected for statements
// that don't return rows.
func (r *Result) NumRows() int64 {
	if r.fromRows {
		return int64(len(r.rows))
	}
	return r.affected
}

// Row returns the row at the cursor and advances it. Reading past the last
// row returns an error wrapping sql.ErrNoRows.
func (r *Result) Row() (Row, error) {
	row, err := r.RowAt(r.cursor)
	if err != nil {
		return Row{}, err
	}
	r.cursor++
	return row, nil
}

// RowAt returns the row at offset i, without moving the cursor. An offset
// outside the result returns an error wrapping sql.ErrNoRows.
func (r *Result) RowAt(i int) (Row, error) {
	if i < 0 || i >= len(r.rows) {
		return Row{}, fmt.Errorf("no row %d (have %d): %w", i, len(r.rows), sql.ErrNoRows)
	}
	return r.rows[i], nil
}

// Rows returns all rows.
func (r *Result) Rows() []Row { return r.rows }

// Slices returns every row as a value slice.
func (r *Result) Slices() [][]any {
	out := make([][]any, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row.Slice())
	}
	return out
}

// Maps returns every row as a column-keyed map.
func (r *Result) Maps() []map[string]any {
	out := make([]map[string]any, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row.Map())
	}
	return out
}

// All returns every row in the given shape.
func (r *Result) All(shape Shape) []any {
	out := make([]any, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row.As(shape))
	}
	return out
}

// Dump the rows as an aligned table; mostly useful for debugging.
func (r *Result) Dump(w io.Writer) {
	t := tabwriter.NewWriter(w, 4, 4, 2, ' ', 0)
	fmt.Fprintln(t, strings.Join(r.cols, "\t"))
	for _, row := range r.rows {
		for i, v := range row.vals {
			if i > 0 {
				fmt.Fprint(t, "\t")
			}
			fmt.Fprint(t, formatValue(v, false))
		}
		fmt.Fprintln(t)
	}
	t.Flush()
}

// DumpString is like Dump, returning a string.
func (r *Result) DumpString() string {
	b := new(bytes.Buffer)
	r.Dump(b)
	return b.String()
}

// Columns returns the column names, in select order.
func (r Row) Columns() []string { return r.cols }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.vals) }

// Index returns the value at column i.
func (r Row) Index(i int) any { return r.vals[i] }

// Get returns the value of the named column, with ok false if there is no
// such column.
func (r Row) Get(col string) (any, bool) {
	for i, c := range r.cols {
		if c == col {
			return r.vals[i], true
		}
	}
	return nil, false
}

// Slice returns the values in column order.
func (r Row) Slice() []any {
	return append([]any(nil), r.vals...)
}

// Map returns the values keyed by column name; with duplicate column names
// the last one wins.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.vals))
	for i, c := range r.cols {
		m[c] = r.vals[i]
	}
	return m
}

// As returns the row in the given shape: the Row itself for ShapeRow,
// Slice() for ShapeSlice, and Map() for ShapeMap.
func (r Row) As(s Shape) any {
	switch s {
	case ShapeRow:
		return r
	case ShapeSlice:
		return r.Slice()
	case ShapeMap:
		return r.Map()
	default:
		panic(fmt.Sprintf("zsql.Row.As: unknown shape %d", s))
	}
}

// formatValue renders a driver value for human consumption.
func formatValue(v any, quoted bool) string {
	switch vv := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return formatValue(vv.Format(Date), quoted)
	case []byte:
		if zbyte.Binary(vv) {
			return fmt.Sprintf("%x", vv)
		}
		return formatValue(string(vv), quoted)
	case string:
		if quoted {
			return "'" + strings.ReplaceAll(vv, "'", "''") + "'"
		}
		return vv
	default:
		return fmt.Sprintf("%v", vv)
	}
}
