package zsql

import (
	"context"
	"fmt"
	"strings"

	"zgo.at/zsql/drivers"
)

// ConnectOptions are the options for Connect.
type ConnectOptions struct {
	Driver   string            // Driver name: "sqlite", "sqlite3", "pgx", "pq", "mysql", "mariadb", "duckdb".
	Host     string            // Hostname as "host", "host:port", or "host:port:protocol".
	User     string            // Username to sign in as.
	Password string            // Password to use.
	Database string            // Database name, or path for file-based engines.
	Params   map[string]string // Engine-specific connection parameters.
	DSN      string            // Pre-formed DSN; overrides Host, User, Password, Database, and Params.

	TablePrefix string // Prefix replacing the table prefix macro; also enables substitution.
	PrefixMacro string // Macro to substitute; "{{prefix}}" by default.
	StmtCache   int    // Prepared statement cache size; 1 by default.
}

// Connect to a database.
//
// The driver needs to be registered first by importing the matching package
// under zgo.at/zsql/drivers.
//
// A failed connection returns a drivers.ConnectError, and nothing of the
// attempt is retained.
func Connect(ctx context.Context, opt ConnectOptions) (*DB, error) {
	d, ok := drivers.Get(opt.Driver)
	if !ok {
		return nil, fmt.Errorf(
			"zsql.Connect: no driver %q; did you import zgo.at/zsql/drivers/...? (registered: %s)",
			opt.Driver, strings.Join(drivers.Drivers(), ", "))
	}

	conn, err := d.Connect(ctx, drivers.Info{
		Host:     opt.Host,
		User:     opt.User,
		Password: opt.Password,
		Database: opt.Database,
		Params:   opt.Params,
		DSN:      opt.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("zsql.Connect: %w", err)
	}

	db := New(conn, dialectNames[d.Dialect()])
	db.driver = d
	if opt.TablePrefix != "" {
		db.TablePrefix(opt.TablePrefix)
	}
	if opt.PrefixMacro != "" {
		db.macro = opt.PrefixMacro
	}
	if opt.StmtCache > 0 {
		db.StmtCache(opt.StmtCache)
	}
	return db, nil
}
