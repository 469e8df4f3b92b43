package zsql

import (
	"zgo.at/zstd/ztest"
)

// Diff two strings, ignoring whitespace at the start of a line.
//
// This is useful in tests in combination with Result.DumpString():
//
//	have := db.LastResult().DumpString()
//	want := `
//	    faction_id  name
//	    1           Peacekeepers
//	    2           Moya`
//	if d := zsql.Diff(have, want); d != "" {
//	   t.Error(d)
//	}
//
// It normalizes the leading whitespace in want, making "does my database match
// with what's expected?" fairly easy to test.
func Diff(out, want string) string {
	return ztest.Diff(out, want, ztest.DiffNormalizeWhitespace)
}
