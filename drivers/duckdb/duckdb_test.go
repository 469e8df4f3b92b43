package duckdb

import (
	"errors"
	"fmt"
	"testing"

	"zgo.at/zsql/drivers"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		info drivers.Info
		want string
	}{
		{drivers.Info{}, ""},
		{drivers.Info{Database: "/var/db/analytics.duckdb"}, "/var/db/analytics.duckdb"},
		{drivers.Info{Database: "x.duckdb", Params: map[string]string{"threads": "4", "access_mode": "read_only"}},
			"x.duckdb?access_mode=read_only&threads=4"},
		{drivers.Info{DSN: "y.duckdb?threads=2"}, "y.duckdb?threads=2"},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			have := dsn(tt.info)
			if have != tt.want {
				t.Errorf("\nhave: %q\nwant: %q", have, tt.want)
			}
		})
	}
}

func TestErrUnique(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Binder Error: Referenced column \"x\" not found"), false},
		{errors.New(`Constraint Error: Duplicate key "name: Spot" violates unique constraint`), true},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			out := driver{}.ErrUnique(tt.err)
			if out != tt.want {
				t.Errorf("out: %t; want: %t", out, tt.want)
			}
		})
	}
}
