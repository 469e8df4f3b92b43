// Package mysql provides a zsql driver for MySQL.
//
// This uses https://github.com/go-sql-driver/mysql
//
// The hostname can be given as "host", "host:port", or "host:port:protocol";
// the protocol is "tcp" by default, and for "unix" the host is the socket
// path (e.g. "/var/run/mysqld/mysqld.sock::unix").
//
// parseTime=true is always added to the connection parameters unless
// something else is set explicitly, so time columns scan to time.Time.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"zgo.at/zsql"
	"zgo.at/zsql/drivers"
)

func init() {
	drivers.RegisterDriver(driver{})
}

type driver struct{}

func (driver) Name() string    { return "mysql" }
func (driver) Dialect() string { return "mysql" }
func (driver) ErrUnique(err error) bool {
	var mErr *mysql.MySQLError
	return errors.As(err, &mErr) && mErr.Number == 1062
}

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(info, nil))
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "mysql", Err: err}
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, &drivers.ConnectError{Driver: "mysql", Err: err}
	}

	return db, nil
}

// StartTest starts a new test connected to the database in the
// ZSQL_TEST_MYSQL environment variable, skipping the test if it's not set.
func StartTest(t *testing.T) *zsql.DB {
	t.Helper()

	c := os.Getenv("ZSQL_TEST_MYSQL")
	if c == "" {
		t.Skip("ZSQL_TEST_MYSQL not set")
	}

	db, err := zsql.Connect(context.Background(), zsql.ConnectOptions{Driver: "mysql", DSN: c})
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// DSN forms a go-sql-driver connection string from the connection info, with
// defaults applied for parameters not set in info.Params. The mariadb driver
// uses this as well.
func DSN(info drivers.Info, defaults map[string]string) string {
	if info.DSN != "" {
		return info.DSN
	}

	b := new(strings.Builder)
	if info.User != "" {
		b.WriteString(info.User)
		if info.Password != "" {
			b.WriteString(":")
			b.WriteString(info.Password)
		}
		b.WriteString("@")
	}
	if info.Host != "" {
		host, port, protocol := splitHost(info.Host)
		b.WriteString(protocol)
		b.WriteString("(")
		b.WriteString(host)
		if protocol == "tcp" {
			b.WriteString(":")
			b.WriteString(port)
		}
		b.WriteString(")")
	}
	b.WriteString("/")
	b.WriteString(info.Database)

	params := map[string]string{"parseTime": "true"}
	for k, v := range defaults {
		params[k] = v
	}
	for k, v := range info.Params {
		params[k] = v
	}
	keys := make([]string, 0, len(params))
	for k := range params {
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
		b.WriteString(params[k])
	}
	return b.String()
}

func splitHost(host string) (h, port, protocol string) {
	port, protocol = "3306", "tcp"
	parts := strings.SplitN(host, ":", 3)
	h = parts[0]
	if len(parts) > 1 && parts[1] != "" {
		port = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		protocol = parts[2]
	}
	return h, port, protocol
}
