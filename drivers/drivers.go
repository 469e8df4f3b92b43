// Package drivers registers SQL drivers.
package drivers

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
)

// Info is the connection information a Driver forms its DSN from.
//
// This needs to be its own type, rather than reusing the options type in the
// main package, to avoid import cycles.
type Info struct {
	Host     string            // Hostname as "host", "host:port", or "host:port:protocol".
	User     string            // Username to sign in as.
	Password string            // Password to use.
	Database string            // Database name, or path for file-based engines.
	Params   map[string]string // Engine-specific connection parameters.
	DSN      string            // Pre-formed DSN; overrides all of the above.
}

// ConnectError is returned when connecting to the database failed.
type ConnectError struct {
	Driver string // Driver name
	Err    error
}

func (err *ConnectError) Error() string {
	return fmt.Sprintf("connect with driver %q: %s", err.Driver, err.Err)
}

func (err *ConnectError) Unwrap() error { return err.Err }

// Driver for a SQL connection.
type Driver interface {
	// Name of this driver.
	Name() string

	// SQL dialect for the database engine; "sqlite", "postgresql", "mysql",
	// "mariadb", or "duckdb".
	Dialect() string

	// Connect to the database and verify the connection works.
	Connect(ctx context.Context, info Info) (*sql.DB, error)

	// ErrUnique reports if this error reports a UNIQUE constraint violation.
	ErrUnique(error) bool
}

var (
	drivers   = make(map[string]Driver)
	driversMu sync.Mutex
)

// RegisterDriver registers a new Driver.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	_, ok := drivers[d.Name()]
	if ok {
		panic(fmt.Sprintf("zsql.RegisterDriver: driver %q is already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// Get the driver registered under this name.
func Get(name string) (Driver, bool) {
	driversMu.Lock()
	defer driversMu.Unlock()

	d, ok := drivers[name]
	return d, ok
}

// Drivers returns the names of all registered drivers, sorted.
func Drivers() []string {
	driversMu.Lock()
	defer driversMu.Unlock()

	l := make([]string, 0, len(drivers))
	for n := range drivers {
		l = append(l, n)
	}
	sort.Strings(l)
	return l
}
