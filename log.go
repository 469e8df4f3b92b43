package zsql

import "time"

// Thresholds for SlowQueries and LongQueries.
const (
	SlowQuery = 1 * time.Second
	LongQuery = 10 * time.Second
)

// LogEntry is one entry in the query log.
type LogEntry struct {
	Query string        // Query after prefix expansion, before parameter binding.
	Took  time.Duration // Wall-clock time including the driver round-trip.
}

// Queries returns the query log: every query this DB ran, in order, with how
// long it took. Failed queries are logged as well.
func (db *DB) Queries() []LogEntry {
	return append([]LogEntry(nil), db.log...)
}

// SlowQueries returns the logged queries that took threshold or longer.
func (db *DB) SlowQueries(threshold time.Duration) []LogEntry {
	var slow []LogEntry
	for _, e := range db.log {
		if e.Took >= threshold {
			slow = append(slow, e)
		}
	}
	return slow
}

// LongQueries returns the logged queries that took LongQuery or longer; it's
// SlowQueries with a higher threshold.
func (db *DB) LongQueries() []LogEntry {
	return db.SlowQueries(LongQuery)
}
