// Package duckdb provides a zsql driver for DuckDB.
//
// This uses https://github.com/marcboeker/go-duckdb and requires cgo.
//
// An empty database path opens an in-memory database.
package duckdb

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"testing"

	_ "github.com/marcboeker/go-duckdb"
	"zgo.at/zsql"
	"zgo.at/zsql/drivers"
)

func init() {
	drivers.RegisterDriver(driver{})
}

type driver struct{}

func (driver) Name() string    { return "duckdb" }
func (driver) Dialect() string { return "duckdb" }

func (driver) ErrUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "violates unique constraint")
}

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	db, err := sql.Open("duckdb", dsn(info))
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "duckdb", Err: err}
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, &drivers.ConnectError{Driver: "duckdb", Err: err}
	}

	return db, nil
}

// StartTest starts a new test with an in-memory database.
func StartTest(t *testing.T) *zsql.DB {
	t.Helper()

	db, err := zsql.Connect(context.Background(), zsql.ConnectOptions{Driver: "duckdb"})
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func dsn(info drivers.Info) string {
	if info.DSN != "" {
		return info.DSN
	}

	b := new(strings.Builder)
	b.WriteString(info.Database)
	keys := make([]string, 0, len(info.Params))
	for k := range info.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(info.Params[k])
	}
	return b.String()
}
