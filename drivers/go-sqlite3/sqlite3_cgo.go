//go:build cgo

package sqlite3

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mattn/go-sqlite3"
	"zgo.at/zsql"
	"zgo.at/zsql/drivers"
)

var registerHook sync.Once

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	name := "sqlite3"
	if defHook != nil {
		registerHook.Do(func() {
			sql.Register("sqlite3-hook", &sqlite3.SQLiteDriver{ConnectHook: defHook})
		})
		name = "sqlite3-hook"
	}

	d := dsn(info)
	db, err := sql.Open(name, d)
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "sqlite3", Err: err}
	}

	// In-memory databases are per-connection unless the cache is shared.
	if !strings.Contains(d, "cache=shared") &&
		(strings.Contains(d, ":memory:") || strings.Contains(d, "mode=memory")) {
		db.SetMaxOpenConns(1)
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, &drivers.ConnectError{Driver: "sqlite3", Err: err}
	}

	return db, nil
}

func (driver) ErrUnique(err error) bool {
	var sqlErr sqlite3.Error
	return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// StartTest starts a new test with an in-memory database.
func StartTest(t *testing.T) *zsql.DB {
	t.Helper()

	db, err := zsql.Connect(context.Background(), zsql.ConnectOptions{
		Driver:   "sqlite3",
		Database: ":memory:",
		Params:   map[string]string{"cache": "shared"},
	})
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
