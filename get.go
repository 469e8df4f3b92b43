package zsql

import (
	"context"
	"fmt"
)

// GetResults runs a query and returns all rows in the given shape.
func (db *DB) GetResults(ctx context.Context, query string, params P, shape Shape) ([]any, error) {
	r, err := db.do(ctx, "zsql.GetResults", query, params)
	if err != nil {
		return nil, err
	}
	return r.All(shape), nil
}

// GetRow runs a query and returns the row at offset in the given shape.
//
// An offset outside the result returns an error wrapping sql.ErrNoRows; use
// ErrNoRows to test for it.
func (db *DB) GetRow(ctx context.Context, query string, params P, offset int, shape Shape) (any, error) {
	r, err := db.do(ctx, "zsql.GetRow", query, params)
	if err != nil {
		return nil, err
	}
	row, err := r.RowAt(offset)
	if err != nil {
		return nil, fmt.Errorf("zsql.GetRow: %w", err)
	}
	return row.As(shape), nil
}

// GetVar runs a query and returns the single value at column col of the row
// at offset row.
//
// Out-of-range offsets return an error wrapping sql.ErrNoRows.
func (db *DB) GetVar(ctx context.Context, query string, params P, col, row int) (any, error) {
	r, err := db.do(ctx, "zsql.GetVar", query, params)
	if err != nil {
		return nil, err
	}
	if err := checkColumn(r, col); err != nil {
		return nil, fmt.Errorf("zsql.GetVar: %w", err)
	}
	rr, err := r.RowAt(row)
	if err != nil {
		return nil, fmt.Errorf("zsql.GetVar: %w", err)
	}
	return rr.Index(col), nil
}

// GetColumn runs a query and returns the values of one column, one entry per
// row.
func (db *DB) GetColumn(ctx context.Context, query string, params P, col int) ([]any, error) {
	r, err := db.do(ctx, "zsql.GetColumn", query, params)
	if err != nil {
		return nil, err
	}
	if err := checkColumn(r, col); err != nil {
		return nil, fmt.Errorf("zsql.GetColumn: %w", err)
	}
	vals := make([]any, 0, len(r.rows))
	for _, row := range r.rows {
		vals = append(vals, row.Index(col))
	}
	return vals, nil
}

// GetPairs runs a query and returns a map of one column keyed by another.
//
// Keys are formatted as strings (nil as "NULL", times in the Date format);
// with duplicate keys the last row wins.
func (db *DB) GetPairs(ctx context.Context, query string, params P, keyCol, valCol int) (map[string]any, error) {
	r, err := db.do(ctx, "zsql.GetPairs", query, params)
	if err != nil {
		return nil, err
	}
	if err := checkColumn(r, keyCol); err != nil {
		return nil, fmt.Errorf("zsql.GetPairs: %w", err)
	}
	if err := checkColumn(r, valCol); err != nil {
		return nil, fmt.Errorf("zsql.GetPairs: %w", err)
	}
	pairs := make(map[string]any, len(r.rows))
	for _, row := range r.rows {
		pairs[formatValue(row.Index(keyCol), false)] = row.Index(valCol)
	}
	return pairs, nil
}

func checkColumn(r *Result, col int) error {
	// Exec results have no columns; RowAt reports the error then.
	if col < 0 || (len(r.cols) > 0 && col >= len(r.cols)) {
		return fmt.Errorf("no column %d (have %d)", col, len(r.cols))
	}
	return nil
}
