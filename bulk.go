package zsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// BulkInsert inserts as many rows as possible per query we send to the
// server.
//
// Rows are buffered and sent as multi-row inserts through the regular query
// pipeline, so the table prefix macro, query log, and metrics all apply.
type BulkInsert struct {
	rows     uint16
	Limit    uint16
	ctx      context.Context
	db       *DB
	insert   bulkBuilder
	errors   []string
	returned [][]any
}

// NewBulkInsert makes a new BulkInsert builder.
func (db *DB) NewBulkInsert(ctx context.Context, table string, columns []string) BulkInsert {
	return BulkInsert{
		ctx: ctx,
		db:  db,
		// SQLITE_MAX_VARIABLE_NUMBER: https://www.sqlite.org/limits.html
		Limit:  uint16(32766/len(columns) - 1),
		insert: newBulkBuilder(table, columns...),
	}
}

// OnConflict sets the "on conflict [..]" part of the query. This needs to
// include the "on conflict" itself.
func (m *BulkInsert) OnConflict(c string) {
	m.insert.conflict = c
}

// Returning sets column names in the "returning" part of the query.
//
// The values can be fetched with [BulkInsert.Returned].
func (m *BulkInsert) Returning(columns ...string) {
	m.returned = make([][]any, 0, 32)
	m.insert.returning = columns
}

// Returned returns the rows the engine sent back; only useful if
// [BulkInsert.Returning] was set.
//
// This will only return values once, for example:
//
//	Values(...)    // Inserts 3 rows
//	Returned()     // Return the 3 rows
//	Values(..)     // Inserts 1 row
//	Returned()     // Returns the 1 row
func (m *BulkInsert) Returned() [][]any {
	defer func() { m.returned = m.returned[:0] }()
	return m.returned
}

// Values adds a set of values.
func (m *BulkInsert) Values(values ...any) {
	if m.rows+1 >= m.Limit {
		m.flush()
	}
	m.insert.values(values...)
	m.rows++
}

// Finish the operation, returning any errors.
//
// This can be called more than once, in cases where you want to have some
// fine-grained control over when actual SQL is sent to the server.
func (m *BulkInsert) Finish() error {
	if m.rows > 0 {
		m.flush()
	}

	if len(m.errors) == 0 {
		return nil
	}
	return fmt.Errorf("zsql.BulkInsert: %d errors: %s",
		len(m.errors), strings.Join(m.errors, "\n"))
}

func (m *BulkInsert) flush() {
	query, params := m.insert.SQL()
	var err error
	if len(m.insert.returning) > 0 {
		var r *Result
		r, err = m.db.Query(m.ctx, query, params)
		if err == nil {
			m.returned = append(m.returned, r.Slices()...)
		}
	} else {
		err = m.db.Exec(m.ctx, query, params)
	}
	if err != nil {
		m.errors = append(m.errors, err.Error())
	}

	m.insert.vals = m.insert.vals[:0]
	m.rows = 0
}

type bulkBuilder struct {
	table     string
	conflict  string
	returning []string
	cols      []string
	vals      [][]any
}

func newBulkBuilder(table string, cols ...string) bulkBuilder {
	return bulkBuilder{table: table, cols: cols, vals: make([][]any, 0, 32)}
}

func (b *bulkBuilder) values(vals ...any) {
	b.vals = append(b.vals, vals)
}

// SQL builds the insert statement for the buffered rows, with one :vI_J
// parameter per value.
func (b *bulkBuilder) SQL() (string, P) {
	var s strings.Builder
	s.WriteString("insert into ")
	s.WriteString(b.table)
	s.WriteString(" (")
	s.WriteString(strings.Join(b.cols, ", "))
	s.WriteString(") values ")

	params := make(P, len(b.vals)*len(b.cols))
	for i := range b.vals {
		s.WriteByte('(')
		for j := range b.vals[i] {
			name := "v" + strconv.Itoa(i) + "_" + strconv.Itoa(j)
			s.WriteByte(':')
			s.WriteString(name)
			params[name] = b.vals[i][j]
			if j < len(b.vals[i])-1 {
				s.WriteString(", ")
			}
		}
		s.WriteByte(')')
		if i < len(b.vals)-1 {
			s.WriteString(", ")
		}
	}

	if b.conflict != "" {
		s.WriteByte(' ')
		s.WriteString(b.conflict)
	}
	if len(b.returning) > 0 {
		s.WriteString(" returning ")
		s.WriteString(strings.Join(b.returning, ", "))
	}
	return s.String(), params
}
