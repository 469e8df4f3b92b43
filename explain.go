package zsql

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Explain writes the query with its execution plan to w.
//
// The query is actually run to get the plan, so data modification statements
// modify data here too. PostgreSQL uses "explain analyze" and SQLite "explain
// query plan"; other engines don't support this.
func (db *DB) Explain(ctx context.Context, w io.Writer, query string, params P) error {
	var explain []string
	switch db.SQLDialect() {
	default:
		return fmt.Errorf("zsql.Explain: no explain for dialect %q", db.SQLDialect())
	case DialectPostgreSQL:
		r, err := db.Query(ctx, `explain analyze `+query, params)
		if err != nil {
			return fmt.Errorf("zsql.Explain: %w", err)
		}
		for _, row := range r.Rows() {
			explain = append(explain, "\t"+formatValue(row.Index(0), false))
		}
	case DialectSQLite:
		start := time.Now()
		r, err := db.Query(ctx, `explain query plan `+query, params)
		if err != nil {
			return fmt.Errorf("zsql.Explain: %w", err)
		}
		for _, row := range r.Rows() {
			// id, parent, notused, detail
			explain = append(explain, "\t"+formatValue(row.Index(row.Len()-1), false))
		}
		if r.Len() > 0 {
			explain = append(explain, "\tTime: "+time.Since(start).Round(time.Millisecond).String())
		}
	}

	q := deIndent(applyParams(query, params))
	fmt.Fprint(w, "QUERY:\n\t"+strings.ReplaceAll(q, "\n", "\n\t")+
		"\nEXPLAIN:\n"+strings.Join(explain, "\n")+
		"\n\n")
	return nil
}

// applyParams replaces the named parameters in query with their values.
//
// This is ONLY for display; parameters are never interpolated in queries we
// send to the database.
func applyParams(query string, params P) string {
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	// Longest first, so :prefix doesn't eat in to :prefix_more.
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, n := range names {
		query = strings.ReplaceAll(query, ":"+n, formatValue(params[n], true))
	}
	return query
}

// deIndent strips the indent that comes from writing queries as indented
// backtick strings.
func deIndent(in string) string {
	in = strings.TrimLeft(in, "\n\t ")
	indent := 0
	if i := strings.IndexByte(in, '\n'); i > -1 {
		for _, c := range in[i+1:] {
			if c != '\t' {
				break
			}
			indent++
		}
	}
	if indent == 0 {
		return strings.TrimSpace(in)
	}

	r := ""
	for _, line := range strings.Split(in, "\n") {
		r += strings.Replace(line, "\t", "", indent) + "\n"
	}
	return strings.TrimSpace(r)
}
