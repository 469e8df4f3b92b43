// Package pq provides a zsql driver for PostgreSQL.
//
// This uses https://github.com/lib/pq
//
// The hostname can be given as "host" or "host:port"; any protocol part is
// ignored. Fields that are left unset fall back to the usual PG* environment
// variables.
//
// This will set the maximum number of open and idle connections to 25 each,
// instead of Go's default of 0 and 2. To change this, you can use:
//
//	db.DBSQL().SetMaxOpenConns(100)
package pq

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/lib/pq"
	"zgo.at/zsql/drivers"
)

func init() {
	drivers.RegisterDriver(driver{})
}

type driver struct{}

func (driver) Name() string    { return "pq" }
func (driver) Dialect() string { return "postgresql" }
func (driver) ErrUnique(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn(info))
	if err != nil {
		return nil, &drivers.ConnectError{Driver: "pq", Err: err}
	}

	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, &drivers.ConnectError{Driver: "pq", Err: err}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	return db, nil
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
