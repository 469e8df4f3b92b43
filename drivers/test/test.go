// Package test provides a fake zsql driver which connects to nothing.
//
// Queries run against it prepare and execute without error: "select 1"
// returns a single row, everything else returns no rows, and writes report
// one affected row with insert id 1.
package test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"

	"zgo.at/zsql/drivers"
)

func init() {
	sql.Register("test", testSQLDriver{})
	drivers.RegisterDriver(testDriver{})
}

// Fail makes every Connect fail with this error, when set.
var Fail error

type (
	testDriver    struct{}
	testSQLDriver struct{}
	testConn      struct{}
	testStmt      struct{ query string }
	testTx        struct{}
	testResult    struct{}
	testRows      struct {
		cols []string
		rows [][]driver.Value
	}
)

func (testDriver) Name() string         { return "test" }
func (testDriver) Dialect() string      { return "sqlite" }
func (testDriver) ErrUnique(error) bool { return false }
func (testDriver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	if Fail != nil {
		return nil, &drivers.ConnectError{Driver: "test", Err: Fail}
	}
	db, err := sql.Open("test", "")
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "test", Err: err}
	}
	return db, nil
}

func (testSQLDriver) Open(name string) (driver.Conn, error) { return testConn{}, nil }

func (testConn) Prepare(query string) (driver.Stmt, error) { return testStmt{query: query}, nil }
func (testConn) Close() error                              { return nil }
func (testConn) Begin() (driver.Tx, error)                 { return testTx{}, nil }

func (testStmt) Close() error  { return nil }
func (testStmt) NumInput() int { return -1 }
func (testStmt) Exec(args []driver.Value) (driver.Result, error) {
	return testResult{}, nil
}
func (s testStmt) Query(args []driver.Value) (driver.Rows, error) {
	if s.query == "select 1" {
		return &testRows{
			cols: []string{"1"},
			rows: [][]driver.Value{{int64(1)}},
		}, nil
	}
	return &testRows{}, nil
}

func (testTx) Commit() error   { return nil }
func (testTx) Rollback() error { return nil }

func (testResult) LastInsertId() (int64, error) { return 1, nil }
func (testResult) RowsAffected() (int64, error) { return 1, nil }

func (r *testRows) Columns() []string { return r.cols }
func (r *testRows) Close() error      { return nil }
func (r *testRows) Next(dest []driver.Value) error {
	if len(r.rows) == 0 {
		return io.EOF
	}
	row := r.rows[0]
	if len(dest) != len(row) {
		return errors.New("testRows: different len")
	}
	copy(dest, row)

	r.rows = r.rows[1:]
	return nil
}
