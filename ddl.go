package zsql

import (
	"context"
	"fmt"
)

// Truncate removes all rows from table.
//
// SQLite has no truncate statement; a plain delete is run there.
func (db *DB) Truncate(ctx context.Context, table string) error {
	q := "truncate table " + table
	if db.dialect == DialectSQLite {
		q = "delete from " + table
	}
	_, err := db.do(ctx, "zsql.Truncate", q, nil)
	return err
}

// Drop removes a database object; typ must be "table" or "view".
func (db *DB) Drop(ctx context.Context, typ, name string) error {
	switch typ {
	case "table", "view":
	default:
		return fmt.Errorf("zsql.Drop: unknown object type %q", typ)
	}
	_, err := db.do(ctx, "zsql.Drop", "drop "+typ+" "+name, nil)
	return err
}

// DropTable removes a table.
func (db *DB) DropTable(ctx context.Context, table string) error {
	_, err := db.do(ctx, "zsql.DropTable", "drop table "+table, nil)
	return err
}

// DropView removes a view.
func (db *DB) DropView(ctx context.Context, view string) error {
	_, err := db.do(ctx, "zsql.DropView", "drop view "+view, nil)
	return err
}

// ListTables returns the names of all tables.
func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	var query string
	switch db.dialect {
	case DialectPostgreSQL:
		query = `select c.relname as name
			from pg_catalog.pg_class c
			left join pg_catalog.pg_namespace n on n.oid = c.relnamespace
			where
				c.relkind = 'r' and
				n.nspname <> 'pg_catalog' and
				n.nspname <> 'information_schema' and
				n.nspname !~ '^pg_toast' and
				pg_catalog.pg_table_is_visible(c.oid)
			order by name`
	case DialectSQLite:
		query = `select name from sqlite_master where type='table' order by name`
	case DialectMySQL, DialectMariaDB, DialectDuckDB:
		query = `show tables`
	default:
		return nil, fmt.Errorf("zsql.ListTables: not supported for dialect %q", db.dialect)
	}

	r, err := db.Query(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("zsql.ListTables: %w", err)
	}
	tables := make([]string, 0, r.Len())
	for _, row := range r.Rows() {
		tables = append(tables, formatValue(row.Index(0), false))
	}
	return tables, nil
}
