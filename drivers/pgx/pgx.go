// Package pgx provides a zsql driver for PostgreSQL.
//
// This uses https://github.com/jackc/pgx
//
// The hostname can be given as "host" or "host:port"; any protocol part is
// ignored. Fields that are left unset fall back to the usual PG* environment
// variables.
//
// This will set the maximum number of open and idle connections to 25 each,
// instead of Go's default of 0 and 2. To change this, you can use:
//
//	db.DBSQL().SetMaxOpenConns(100)
package pgx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"zgo.at/zsql"
	"zgo.at/zsql/drivers"
)

func init() {
	drivers.RegisterDriver(driver{})
}

type driver struct{}

func (driver) Name() string    { return "pgx" }
func (driver) Dialect() string { return "postgresql" }
func (driver) ErrUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn(info))
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "pgx", Err: err}
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, &drivers.ConnectError{Driver: "pgx", Err: err}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	return db, nil
}

// StartTest starts a new test connected to the database in the
// ZSQL_TEST_PGSQL environment variable, skipping the test if it's not set.
//
// Every test runs in its own schema, which is dropped again when the test
// ends.
func StartTest(t *testing.T) *zsql.DB {
	t.Helper()

	c := os.Getenv("ZSQL_TEST_PGSQL")
	if c == "" {
		t.Skip("ZSQL_TEST_PGSQL not set")
	}

	db, err := zsql.Connect(context.Background(), zsql.ConnectOptions{Driver: "pgx", DSN: c})
	if err != nil {
		t.Fatalf("pgx.StartTest: connecting to %q: %s", c, err)
	}

	schema := fmt.Sprintf(`"zsql_test_%s"`, time.Now().Format("20060102T15:04:05.9999"))
	err = db.Exec(context.Background(), `create schema `+schema, nil)
	if err != nil {
		t.Fatalf("pgx.StartTest: creating schema %s: %s", schema, err)
	}
	err = db.Exec(context.Background(), `set search_path to `+schema, nil)
	if err != nil {
		t.Fatalf("pgx.StartTest: setting search_path to %s: %s", schema, err)
	}

	t.Cleanup(func() {
		db.Exec(context.Background(), `drop schema `+schema+` cascade`, nil)
		db.Close()
	})
	return db
}

// dsn forms a key=value connection string from the connection info. An empty
// string connects with the PG* environment variables.
func dsn(info drivers.Info) string {
	if info.DSN != "" {
		return info.DSN
	}

	var pairs []string
	add := func(k, v string) {
		if v != "" {
			pairs = append(pairs, k+"="+quote(v))
		}
	}

	parts := strings.SplitN(info.Host, ":", 3)
	add("host", parts[0])
	if len(parts) > 1 {
		add("port", parts[1])
	}
	add("user", info.User)
	add("password", info.Password)
	add("dbname", info.Database)

	keys := make([]string, 0, len(info.Params))
	for k := range info.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, info.Params[k])
	}
	return strings.Join(pairs, " ")
}

// quote a parameter value for a key=value connection string.
func quote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}
