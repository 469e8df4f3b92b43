// Package sqlite provides a zsql driver for SQLite.
//
// This uses https://modernc.org/sqlite, a cgo-free translation of the SQLite
// C source; use the go-sqlite3 driver package if you want the C library.
//
// Connection parameters are passed through as-is. Pragmas use the
// "_pragma=busy_timeout(200)" form; since parameters are a map this allows
// one pragma, use the DSN field to set more than one.
package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
	"zgo.at/zsql"
	"zgo.at/zsql/drivers"
)

func init() {
	drivers.RegisterDriver(driver{})
}

type driver struct{}

func (driver) Name() string    { return "sqlite" }
func (driver) Dialect() string { return "sqlite" }

func (driver) ErrUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	d := dsn(info)
	db, err := sql.Open("sqlite", d)
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "sqlite", Err: err}
	}

	// Every pool connection gets its own empty database otherwise.
	if strings.Contains(d, ":memory:") || strings.Contains(d, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, &drivers.ConnectError{Driver: "sqlite", Err: err}
	}

	return db, nil
}

// StartTest starts a new test with an in-memory database.
func StartTest(t *testing.T) *zsql.DB {
	t.Helper()

	db, err := zsql.Connect(context.Background(), zsql.ConnectOptions{
		Driver:   "sqlite",
		Database: ":memory:",
	})
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
