// Package sqlite3 provides a zsql driver for SQLite.
//
// This uses https://github.com/mattn/go-sqlite3/ and requires cgo; the sqlite
// driver package is a pure-Go alternative.
//
// Several connection parameters are set to different defaults:
//
//	_journal_mode=wal          Almost always faster with better concurrency,
//	                           with little drawbacks for most use cases.
//	                           https://www.sqlite.org/wal.html
//
//	_foreign_keys=on           Check FK constraints; by default they're not
//	                           enforced, which is probably not what you want.
//
//	_busy_timeout=200          Wait 200ms for locks instead of immediately
//	                           throwing an error.
//
//	_defer_foreign_keys=on     Delay FK checks until the transaction commit; by
//	                           default they're checked immediately (if
//	                           enabled).
//
//	_case_sensitive_like=on    LIKE is case-sensitive, like PostgreSQL.
//
//	_cache_size=-20000         20M cache size, instead of 2M. Can be a
//	                           significant performance improvement.
//
// You can still set "_journal_mode" or any of the others to something else in
// the connection parameters.
//
// Use DefaultHook() to set a connection hook on every new connection; it must
// be set before the first connection is made, and connections made before are
// not modified.
package sqlite3

import (
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"zgo.at/zsql/drivers"
)

func init() {
	drivers.RegisterDriver(driver{})
}

var defHook func(*sqlite3.SQLiteConn) error

// DefaultHook sets the SQLite connection hook to use on every new connection.
func DefaultHook(f func(*sqlite3.SQLiteConn) error) {
	defHook = f
}

type driver struct{}

func (driver) Name() string    { return "sqlite3" }
func (driver) Dialect() string { return "sqlite" }

// Connection parameter defaults; see the package documentation.
var defaults = map[string]string{
	"_journal_mode":        "wal",
	"_foreign_keys":        "on",
	"_busy_timeout":        "200",
	"_defer_foreign_keys":  "on",
	"_case_sensitive_like": "on",
	"_cache_size":          "-20000",
}

func dsn(info drivers.Info) string {
	if info.DSN != "" {
		return info.DSN
	}

	params := make(map[string]string, len(defaults)+len(info.Params))
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

	b := new(strings.Builder)
	b.WriteString(info.Database)
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
