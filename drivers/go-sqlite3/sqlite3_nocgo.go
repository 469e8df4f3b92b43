//go:build !cgo

package sqlite3

import (
	"context"
	"database/sql"
	"errors"

	"zgo.at/zsql/drivers"
)

// Inspecting the error codes needs cgo.
func (driver) ErrUnique(err error) bool { return false }

func (driver) Connect(ctx context.Context, info drivers.Info) (*sql.DB, error) {
	return nil, errors.New("go-sqlite3: not available: compiled with CGO_ENABLED=0")
}
