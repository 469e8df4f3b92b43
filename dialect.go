package zsql

import (
	"zgo.at/zsql/internal/sqlparse"
)

// Dialect is the SQL dialect spoken by the connected engine.
type Dialect uint8

const (
	DialectUnknown Dialect = iota
	DialectSQLite
	DialectPostgreSQL
	DialectMySQL
	DialectMariaDB
	DialectDuckDB
)

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "SQLite"
	case DialectPostgreSQL:
		return "PostgreSQL"
	case DialectMySQL:
		return "MySQL"
	case DialectMariaDB:
		return "MariaDB"
	case DialectDuckDB:
		return "DuckDB"
	default:
		return "(unknown)"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// dialectNames maps the names drivers report to a Dialect.
var dialectNames = map[string]Dialect{
	"sqlite":     DialectSQLite,
	"postgres":   DialectPostgreSQL,
	"postgresql": DialectPostgreSQL,
	"mysql":      DialectMySQL,
	"mariadb":    DialectMariaDB,
	"duckdb":     DialectDuckDB,
}

// parseConfig returns how to scan SQL text for this dialect.
func (d Dialect) parseConfig() sqlparse.Config {
	switch d {
	case DialectPostgreSQL:
		return sqlparse.PostgreSQLConfig()
	case DialectMySQL, DialectMariaDB:
		return sqlparse.MySQLConfig()
	case DialectDuckDB:
		return sqlparse.DuckDBConfig()
	default:
		return sqlparse.SQLiteConfig()
	}
}
