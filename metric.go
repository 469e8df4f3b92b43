package zsql

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"zgo.at/zstd/ztime"
)

// MetricRecorder is called for every query a DB runs, with the query text
// after prefix expansion and how long it took.
type MetricRecorder interface {
	Record(d time.Duration, query string)
}

// MetricsMemory records metrics in memory.
type MetricsMemory struct {
	mu      *sync.Mutex
	max     int
	metrics map[string]ztime.Durations
}

// NewMetricsMemory creates a new MetricsMemory, up to "max" metrics per query.
func NewMetricsMemory(max int) *MetricsMemory {
	return &MetricsMemory{
		mu:      new(sync.Mutex),
		max:     max,
		metrics: make(map[string]ztime.Durations),
	}
}

// Reset the contents.
func (m *MetricsMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = make(map[string]ztime.Durations)
}

// Record this query.
func (m *MetricsMemory) Record(d time.Duration, query string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, ok := m.metrics[query]
	if !ok {
		x = ztime.NewDurations(m.max)
	}
	x.Append(d)
	m.metrics[query] = x
}

// Queries gets a list of queries sorted by the total run time.
func (m *MetricsMemory) Queries() []struct {
	Query string
	Times ztime.Durations
} {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := make([]struct {
		Query string
		Times ztime.Durations
	}, 0, len(m.metrics))

	for k, v := range m.metrics {
		l = append(l, struct {
			Query string
			Times ztime.Durations
		}{k, v})
	}

	sort.Slice(l, func(i, j int) bool {
		return l[i].Times.Sum() > l[j].Times.Sum()
	})

	return l
}

func (m *MetricsMemory) String() string {
	b := new(strings.Builder)
	for _, q := range m.Queries() {
		fmt.Fprintf(b, "Query %q:\n", q.Query)
		fmt.Fprintf(b, "    Run time:  %6s\n", q.Times.Sum())
		fmt.Fprintf(b, "    Min:       %6s\n", q.Times.Min())
		fmt.Fprintf(b, "    Max:       %6s\n", q.Times.Max())
		fmt.Fprintf(b, "    Median:    %6s\n", q.Times.Median())
		fmt.Fprintf(b, "    Mean:      %6s\n", q.Times.Mean())
	}
	return b.String()
}
