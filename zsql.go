// Package zsql provides a convenient API to run SQL queries.
//
// A DB wraps a single database connection: it rewrites :name parameters to
// whatever placeholder style the engine wants, substitutes a table prefix
// macro, caches prepared statements, keeps a log of every executed query, and
// reads results fully so they can be inspected more than once.
//
// A DB carries per-query state (last query, last error, insert id) and is not
// safe for use from more than one goroutine at a time; use one DB per
// goroutine, or a Registry to hand out connections by name.
package zsql

import (
	"database/sql"
	"errors"
	"io"
	"os"

	"zgo.at/zsql/drivers"
	"zgo.at/zsql/internal/sqlparse"
)

// Date format for SQL.
const Date = "2006-01-02 15:04:05"

// P is the set of parameters for one query, keyed by name. A leading ":" on
// a key is allowed and stripped.
type P map[string]any

// stderr is used for tests.
var stderr io.Writer = os.Stderr

const (
	defaultMacro     = "{{prefix}}"
	defaultStmtCache = 1
)

// DB is a single database connection.
type DB struct {
	conn    *sql.DB
	driver  drivers.Driver // nil when wrapping an existing *sql.DB
	dialect Dialect
	parse   sqlparse.Config

	prefix    string
	macro     string
	usePrefix bool

	showErrors bool
	errOut     io.Writer

	stmts *stmtCache

	log        []LogEntry
	lastQuery  string
	lastErr    error
	lastResult *Result
	insertID   int64

	metrics MetricRecorder
}

// New returns a DB wrapping an existing connection.
//
// Connect is the regular way to get a DB; this is for connections set up by
// other means. ErrUnique always reports false on a DB created with New.
func New(conn *sql.DB, dialect Dialect) *DB {
	return &DB{
		conn:    conn,
		dialect: dialect,
		parse:   dialect.parseConfig(),
		macro:   defaultMacro,
		stmts:   newStmtCache(defaultStmtCache),
	}
}

// Close the connection, dropping any cached prepared statements.
func (db *DB) Close() error {
	db.stmts.clear()
	return db.conn.Close()
}

// DBSQL returns the database/sql connection.
func (db *DB) DBSQL() *sql.DB { return db.conn }

// SQLDialect returns the SQL dialect this connection speaks.
func (db *DB) SQLDialect() Dialect { return db.dialect }

// DriverName returns the name of the driver this connection was made with,
// or "" for a DB created with New.
func (db *DB) DriverName() string {
	if db.driver == nil {
		return ""
	}
	return db.driver.Name()
}

// ErrUnique reports if this error is a UNIQUE constraint violation.
func (db *DB) ErrUnique(err error) bool {
	if db.driver == nil {
		return false
	}
	return db.driver.ErrUnique(err)
}

// ErrNoRows reports if this error is sql.ErrNoRows, which Result.Row and
// friends return when reading past the end of the result set.
func ErrNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

// TablePrefix sets the prefix that replaces the table prefix macro
// ("{{prefix}}" by default) and enables the substitution.
func (db *DB) TablePrefix(prefix string) {
	db.prefix = prefix
	db.usePrefix = true
}

// NoTablePrefix disables the table prefix substitution; the macro text is
// sent to the engine as-is.
func (db *DB) NoTablePrefix() { db.usePrefix = false }

// Prefix returns the configured table prefix, or "" if substitution is
// disabled.
func (db *DB) Prefix() string {
	if !db.usePrefix {
		return ""
	}
	return db.prefix
}

// ShowErrors echoes every query error to the error log (stderr by default),
// in addition to returning it.
func (db *DB) ShowErrors() { db.showErrors = true }

// HideErrors stops echoing query errors.
func (db *DB) HideErrors() { db.showErrors = false }

// ErrorLog sets the writer ShowErrors echoes to; nil resets it to stderr.
func (db *DB) ErrorLog(w io.Writer) { db.errOut = w }

// Metrics records the run time of every query with m; nil disables it.
func (db *DB) Metrics(m MetricRecorder) { db.metrics = m }

// StmtCache resizes the prepared statement cache, closing any statements
// cached so far. The default size is 1; anything below 1 is taken as 1.
func (db *DB) StmtCache(size int) {
	db.stmts.clear()
	db.stmts = newStmtCache(size)
}

// LastQuery returns the most recently run query, after prefix substitution.
func (db *DB) LastQuery() string { return db.lastQuery }

// LastError returns the error of the most recent query, or nil if it
// succeeded.
func (db *DB) LastError() error { return db.lastErr }

// LastResult returns the result of the most recent successful query.
func (db *DB) LastResult() *Result { return db.lastResult }

// InsertID returns the row ID of the most recent successful insert, or 0 if
// the engine doesn't report one (PostgreSQL; use "returning" there).
func (db *DB) InsertID() int64 { return db.insertID }
