package sqlite3

import (
	"fmt"
	"strings"
	"testing"

	"zgo.at/zsql/drivers"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		info drivers.Info
		want string
	}{
		{drivers.Info{Database: "/var/db/app.sqlite3"},
			"/var/db/app.sqlite3?_busy_timeout=200&_cache_size=-20000&_case_sensitive_like=on&_defer_foreign_keys=on&_foreign_keys=on&_journal_mode=wal"},
		{drivers.Info{Database: ":memory:", Params: map[string]string{"cache": "shared"}},
			":memory:?_busy_timeout=200&_cache_size=-20000&_case_sensitive_like=on&_defer_foreign_keys=on&_foreign_keys=on&_journal_mode=wal&cache=shared"},
		{drivers.Info{DSN: "file:app.db?mode=ro"},
			"file:app.db?mode=ro"},
	}

	for i, tt := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			have := dsn(tt.info)
			if have != tt.want {
				t.Errorf("\nhave: %q\nwant: %q", have, tt.want)
			}
		})
	}

	// An explicit parameter wins over the default.
	have := dsn(drivers.Info{Database: "x.db", Params: map[string]string{"_journal_mode": "delete"}})
	if !strings.Contains(have, "_journal_mode=delete") {
		t.Errorf("default not overridden: %q", have)
	}
}
