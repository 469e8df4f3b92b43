// Package sqlparse rewrites named parameters in SQL text to the positional
// placeholder style of a database engine.
//
// Only :name parameters outside of strings and comments are rewritten; "::" is
// passed through unchanged so PostgreSQL casts keep working.
package sqlparse

import (
	"fmt"
	"strconv"
	"strings"
)

// Style is the positional placeholder style an engine expects.
type Style uint8

const (
	StyleQuestion Style = iota // ?
	StyleDollar                // $1, $2
)

// Config controls scanning for one SQL flavour.
type Config struct {
	Style    Style
	Hash     bool // '#' starts a line comment (MySQL)
	Backtick bool // `…` quotes an identifier (MySQL, SQLite)
	Dollar   bool // $tag$ … $tag$ quotes a string (PostgreSQL, DuckDB)
}

// MySQLConfig returns a scanning configuration for MySQL and MariaDB.
func MySQLConfig() Config { return Config{Style: StyleQuestion, Hash: true, Backtick: true} }

// SQLiteConfig returns a scanning configuration for SQLite.
func SQLiteConfig() Config { return Config{Style: StyleQuestion, Backtick: true} }

// PostgreSQLConfig returns a scanning configuration for PostgreSQL.
func PostgreSQLConfig() Config { return Config{Style: StyleDollar, Dollar: true} }

// DuckDBConfig returns a scanning configuration for DuckDB.
func DuckDBConfig() Config { return Config{Style: StyleQuestion, Dollar: true} }

// Named rewrites every :name placeholder in query to the positional style in
// cfg, returning the rewritten query and the parameter names in placeholder
// order. A name that occurs more than once is returned more than once.
//
// Positional placeholders already in the query are not touched.
func Named(query string, cfg Config) (string, []string) {
	var (
		n     = len(query)
		rq    = make([]byte, 0, n+8)
		names []string
		i     int
		tag   string
	)

	// Written as a goto state machine: a regexp can't deal with the quoting
	// rules, and a state variable with a switch is just goto with more steps.
Base:
	for i < n {
		c := query[i]
		i++
		switch c {
		case '\'':
			rq = append(rq, c)
			goto SingleQuote
		case '"':
			rq = append(rq, c)
			goto DoubleQuote
		case '`':
			rq = append(rq, c)
			if cfg.Backtick {
				goto Backtick
			}
		case '-':
			rq = append(rq, c)
			if i < n && query[i] == '-' {
				goto LineComment
			}
		case '#':
			rq = append(rq, c)
			if cfg.Hash {
				goto LineComment
			}
		case '/':
			if i < n && query[i] == '*' {
				rq = append(rq, '/', '*')
				i++
				goto BlockComment
			}
			rq = append(rq, c)
		case '$':
			if cfg.Dollar {
				if t, ok := dollarTag(query[i-1:]); ok {
					tag = t
					rq = append(rq, tag...)
					i += len(tag) - 1
					goto DollarQuote
				}
			}
			rq = append(rq, c)
		case ':':
			// ::word is :: word, not : :word.
			if i < n && query[i] == ':' {
				rq = append(rq, ':')
				for i < n && query[i] == ':' {
					rq = append(rq, ':')
					i++
				}
				continue
			}
			start := i
			if i < n && letter(query[i]) {
				i++
				for i < n && nameByte(query[i]) {
					i++
				}
			}
			if i == start {
				rq = append(rq, ':')
				continue
			}
			names = append(names, query[start:i])
			if cfg.Style == StyleDollar {
				rq = append(rq, '$')
				rq = strconv.AppendInt(rq, int64(len(names)), 10)
			} else {
				rq = append(rq, '?')
			}
		default:
			rq = append(rq, c)
		}
	}
	return string(rq), names

SingleQuote:
	for i < n {
		c := query[i]
		i++
		rq = append(rq, c)
		switch c {
		case '\'':
			goto Base
		case '\\':
			if i < n {
				rq = append(rq, query[i])
				i++
			}
		}
	}
	return string(rq), names

DoubleQuote:
	for i < n {
		c := query[i]
		i++
		rq = append(rq, c)
		switch c {
		case '"':
			goto Base
		case '\\':
			if i < n {
				rq = append(rq, query[i])
				i++
			}
		}
	}
	return string(rq), names

Backtick:
	for i < n {
		c := query[i]
		i++
		rq = append(rq, c)
		if c == '`' {
			goto Base
		}
	}
	return string(rq), names

LineComment:
	for i < n {
		c := query[i]
		i++
		rq = append(rq, c)
		if c == '\n' {
			goto Base
		}
	}
	return string(rq), names

BlockComment:
	for i < n {
		c := query[i]
		i++
		rq = append(rq, c)
		if c == '*' && i < n && query[i] == '/' {
			rq = append(rq, '/')
			i++
			goto Base
		}
	}
	return string(rq), names

DollarQuote:
	for i < n {
		if query[i] == '$' && strings.HasPrefix(query[i:], tag) {
			rq = append(rq, tag...)
			i += len(tag)
			goto Base
		}
		rq = append(rq, query[i])
		i++
	}
	return string(rq), names
}

// Bind rewrites query with Named and resolves every parameter name from
// params. Entries in params that the query never names are ignored; a name
// with no entry is an error.
func Bind(query string, params map[string]any, cfg Config) (string, []any, error) {
	bound, names := Named(query, cfg)
	if len(names) == 0 {
		return bound, nil, nil
	}

	args := make([]any, 0, len(names))
	for _, name := range names {
		v, ok := params[name]
		if !ok {
			return "", nil, fmt.Errorf("sqlparse.Bind: no value for parameter %q", name)
		}
		args = append(args, v)
	}
	return bound, args, nil
}

// Split splits a script into statements on semicolons outside of strings and
// comments. The semicolons are not kept, and statements holding nothing but
// whitespace and comments are dropped.
func Split(script string, cfg Config) []string {
	var (
		n     = len(script)
		stmts []string
		start int
		has   bool // anything other than whitespace and comments seen
		i     int
		tag   string
	)
	emit := func(end int) {
		if has {
			stmts = append(stmts, strings.TrimSpace(script[start:end]))
		}
		has = false
	}

Base:
	for i < n {
		c := script[i]
		i++
		switch c {
		case ';':
			emit(i - 1)
			start = i
		case '\'':
			has = true
			goto SingleQuote
		case '"':
			has = true
			goto DoubleQuote
		case '`':
			has = true
			if cfg.Backtick {
				goto Backtick
			}
		case '-':
			if i < n && script[i] == '-' {
				goto LineComment
			}
			has = true
		case '#':
			if cfg.Hash {
				goto LineComment
			}
			has = true
		case '/':
			if i < n && script[i] == '*' {
				i++
				goto BlockComment
			}
			has = true
		case '$':
			has = true
			if cfg.Dollar {
				if t, ok := dollarTag(script[i-1:]); ok {
					tag = t
					i += len(tag) - 1
					goto DollarQuote
				}
			}
		case ' ', '\t', '\n', '\r':
			// Whitespace is not content.
		default:
			has = true
		}
	}
	emit(n)
	return stmts

SingleQuote:
	for i < n {
		c := script[i]
		i++
		switch c {
		case '\'':
			goto Base
		case '\\':
			if i < n {
				i++
			}
		}
	}
	emit(n)
	return stmts

DoubleQuote:
	for i < n {
		c := script[i]
		i++
		switch c {
		case '"':
			goto Base
		case '\\':
			if i < n {
				i++
			}
		}
	}
	emit(n)
	return stmts

Backtick:
	for i < n {
		if script[i] == '`' {
			i++
			goto Base
		}
		i++
	}
	emit(n)
	return stmts

LineComment:
	for i < n {
		if script[i] == '\n' {
			i++
			goto Base
		}
		i++
	}
	emit(n)
	return stmts

BlockComment:
	for i < n {
		c := script[i]
		i++
		if c == '*' && i < n && script[i] == '/' {
			i++
			goto Base
		}
	}
	emit(n)
	return stmts

DollarQuote:
	for i < n {
		if script[i] == '$' && strings.HasPrefix(script[i:], tag) {
			i += len(tag)
			goto Base
		}
		i++
	}
	emit(n)
	return stmts
}

// dollarTag reads a $tag$ or $$ quote opener from the start of s.
func dollarTag(s string) (string, bool) {
	for j := 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '$':
			return s[:j+1], true
		case letter(c) || c == '_':
			// okay
		case c >= '0' && c <= '9':
			if j == 1 { // $1 is a placeholder, not a quote
				return "", false
			}
		default:
			return "", false
		}
	}
	return "", false
}

func letter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func nameByte(c byte) bool {
	return letter(c) || c >= '0' && c <= '9' || c == '_'
}
