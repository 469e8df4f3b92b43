package zsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"zgo.at/zsql/internal/sqlparse"
	"zgo.at/zstd/zstring"
)

// Query runs a query and returns its result.
//
// Parameters are given as :name in the query text and looked up in params.
// Statements that return rows (select, show, and so on by the leading
// keyword) are read to completion; for everything else the engine's
// affected-row count is recorded, and the insert ID if it reports one.
//
// Every query is appended to the query log, also on failure. A failure is
// recorded as LastError and echoed to the error log if ShowErrors is set.
func (db *DB) Query(ctx context.Context, query string, params P) (*Result, error) {
	return db.do(ctx, "zsql.Query", query, params)
}

// Exec runs a query, discarding the result.
func (db *DB) Exec(ctx context.Context, query string, params P) error {
	_, err := db.do(ctx, "zsql.Exec", query, params)
	return err
}

// NumRows runs a query and reports the number of rows it returned, or
// affected for statements that don't return rows.
func (db *DB) NumRows(ctx context.Context, query string, params P) (int64, error) {
	r, err := db.do(ctx, "zsql.NumRows", query, params)
	if err != nil {
		return 0, err
	}
	return r.NumRows(), nil
}

// do runs the full query pipeline: substitute the table prefix, rewrite
// parameters, get a prepared statement, run it, and record the outcome.
func (db *DB) do(ctx context.Context, op, query string, params P) (*Result, error) {
	db.lastErr = nil
	query = db.expandPrefix(query)
	db.lastQuery = query

	start := time.Now()
	r, err := db.run(ctx, query, params)
	took := time.Since(start)

	db.log = append(db.log, LogEntry{Query: query, Took: took})
	if db.metrics != nil {
		db.metrics.Record(took, query)
	}

	if err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		db.lastErr = err
		if db.showErrors {
			w := db.errOut
			if w == nil {
				w = stderr
			}
			fmt.Fprintf(w, "%s\n\tfor query: %s\n", err, query)
		}
		return nil, err
	}

	db.lastResult = r
	return r, nil
}

func (db *DB) run(ctx context.Context, query string, params P) (*Result, error) {
	norm, err := normalizeParams(params)
	if err != nil {
		return nil, err
	}
	bound, args, err := sqlparse.Bind(query, norm, db.parse)
	if err != nil {
		return nil, err
	}

	stmt, err := db.stmt(ctx, bound)
	if err != nil {
		return nil, err
	}

	if returnsRows(query) {
		rows, err := stmt.QueryContext(ctx, args...)
		if err != nil {
			return nil, err
		}
		return materialize(rows)
	}

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	affected, _ := res.RowsAffected()
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		db.insertID = id
	}
	return &Result{affected: affected}, nil
}

// stmt returns a cached prepared statement, preparing it on a cache miss.
func (db *DB) stmt(ctx context.Context, query string) (*sql.Stmt, error) {
	if s, ok := db.stmts.get(query); ok {
		return s, nil
	}
	s, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	db.stmts.put(query, s)
	return s, nil
}

func (db *DB) expandPrefix(query string) string {
	if !db.usePrefix || !strings.Contains(query, db.macro) {
		return query
	}
	return strings.ReplaceAll(query, db.macro, db.prefix)
}

// Statement verbs that return rows.
var rowVerbs = []string{"select", "with", "show", "describe", "desc",
	"explain", "pragma", "values", "table"}

func returnsRows(query string) bool {
	l := strings.ToLower(query)

	// The verb can be preceded by comments and parens.
	w := l
	for {
		w = strings.TrimLeft(w, " \t\n\r(")
		if strings.HasPrefix(w, "--") {
			if i := strings.IndexByte(w, '\n'); i > -1 {
				w = w[i+1:]
				continue
			}
			return false
		}
		if strings.HasPrefix(w, "/*") {
			if i := strings.Index(w, "*/"); i > -1 {
				w = w[i+2:]
				continue
			}
			return false
		}
		break
	}
	if i := strings.IndexAny(w, " \t\n\r(*"); i > -1 {
		w = w[:i]
	}
	if zstring.Contains(rowVerbs, w) {
		return true
	}

	// Writes with a "returning" clause return rows too.
	for _, f := range strings.Fields(l) {
		if f == "returning" {
			return true
		}
	}
	return false
}

// normalizeParams strips a leading ":" from parameter names, so P{":a": 1}
// and P{"a": 1} mean the same thing.
func normalizeParams(params P) (map[string]any, error) {
	if len(params) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		k = strings.TrimLeft(k, ":")
		if _, ok := out[k]; ok {
			return nil, fmt.Errorf("parameter given more than once: %q", k)
		}
		out[k] = v
	}
	return out, nil
}
