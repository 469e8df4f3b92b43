// Package mariadb provides a zsql driver for MariaDB.
//
// This uses https://github.com/go-sql-driver/mysql
//
// Only "sql_mode=ansi" is supported. This means that identifiers have to be
// quoted with a " instead of a `. This is set automatically.
//
// Importing this package also registers the mysql driver, as it shares the
// underlying library.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/go-sql-driver/mysql"
	"zgo.at/zsql"
	"zgo.at/zsql/drivers"
	mysqlDriver "zgo.at/zsql/drivers/mysql"
)

func init() {
	drivers.RegisterDriver(driver{})
}

var defaults = map[string]string{"sql_mode": "concat(@@sql_mode, ',ansi')"}

type driver struct{}

func (driver) Name() string    { return "mariadb" }
func (driver) Dialect() string { return "mariadb" }
func (driver) ErrUnique(err error) bool {
	var mErr *mysql.MySQLError
	return errors.As(err, &mErr) && mErr.Number == 1062
}

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	db, err := sql.Open("mysql", mysqlDriver.DSN(info, defaults))
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "mariadb", Err: err}
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, &drivers.ConnectError{Driver: "mariadb", Err: err}
	}

	return db, nil
}

// StartTest starts a new test connected to the database in the
// ZSQL_TEST_MARIADB environment variable, skipping the test if it's not set.
func StartTest(t *testing.T) *zsql.DB {
	t.Helper()

	c := os.Getenv("ZSQL_TEST_MARIADB")
	if c == "" {
		t.Skip("ZSQL_TEST_MARIADB not set")
	}

	db, err := zsql.Connect(context.Background(), zsql.ConnectOptions{Driver: "mariadb", DSN: c})
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}
