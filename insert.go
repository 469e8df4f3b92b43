package zsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Insert a row in table, one column per entry in values. It reports the
// number of rows the engine says it inserted.
//
// The query is built with the columns in sorted order, so the same set of
// columns always produces the same statement text. Table and column names
// are interpolated as-is; don't pass user input for those.
func (db *DB) Insert(ctx context.Context, table string, values P) (int64, error) {
	vals, err := normalizeParams(values)
	if err != nil {
		return 0, fmt.Errorf("zsql.Insert: %w", err)
	}
	if len(vals) == 0 {
		return 0, errors.New("zsql.Insert: no values")
	}

	cols := sortedKeys(vals)
	ph := make([]string, len(cols))
	for i, c := range cols {
		ph[i] = ":" + c
	}
	query := fmt.Sprintf("insert into %s (%s) values (%s)",
		table, strings.Join(cols, ", "), strings.Join(ph, ", "))

	r, err := db.do(ctx, "zsql.Insert", query, vals)
	if err != nil {
		return 0, err
	}
	return r.affected, nil
}

// Update rows in table, setting one column per entry in values for every row
// matching all entries in where. It reports the number of rows the engine
// says it changed.
//
// The where parameters are bound under a "where_" name so a column can be
// both set and matched on: where P{"id": 1} becomes "where id = :where_id".
func (db *DB) Update(ctx context.Context, table string, values, where P) (int64, error) {
	vals, err := normalizeParams(values)
	if err != nil {
		return 0, fmt.Errorf("zsql.Update: %w", err)
	}
	if len(vals) == 0 {
		return 0, errors.New("zsql.Update: no values")
	}
	wh, err := normalizeParams(where)
	if err != nil {
		return 0, fmt.Errorf("zsql.Update: %w", err)
	}
	if len(wh) == 0 {
		return 0, errors.New("zsql.Update: no where parameters")
	}

	params := make(P, len(vals)+len(wh))
	set := make([]string, 0, len(vals))
	for _, c := range sortedKeys(vals) {
		set = append(set, c+" = :"+c)
		params[c] = vals[c]
	}
	cond := make([]string, 0, len(wh))
	for _, c := range sortedKeys(wh) {
		if _, ok := params["where_"+c]; ok {
			return 0, fmt.Errorf("zsql.Update: parameter %q collides with the where clause", "where_"+c)
		}
		cond = append(cond, c+" = :where_"+c)
		params["where_"+c] = wh[c]
	}
	query := fmt.Sprintf("update %s set %s where %s",
		table, strings.Join(set, ", "), strings.Join(cond, " and "))

	r, err := db.do(ctx, "zsql.Update", query, params)
	if err != nil {
		return 0, err
	}
	return r.affected, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
