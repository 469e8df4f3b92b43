package zsql

import (
	"strings"
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	m := NewMetricsMemory(8)
	m.Record(10*time.Millisecond, "select 1")
	m.Record(30*time.Millisecond, "select 1")
	m.Record(5*time.Millisecond, "select 2")

	q := m.Queries()
	if l := len(q); l != 2 {
		t.Fatalf("len(m.Queries()) == %d", l)
	}
	if q[0].Query != "select 1" {
		t.Errorf("not sorted by run time: q[0].Query = %q", q[0].Query)
	}
	if l := q[0].Times.List(); len(l) != 2 || l[0] != 10*time.Millisecond {
		t.Errorf("q[0].Times = %s", l)
	}
	if have := q[0].Times.Sum(); have != 40*time.Millisecond {
		t.Errorf("q[0].Times.Sum() = %s", have)
	}

	if s := m.String(); !strings.Contains(s, `Query "select 1":`) {
		t.Errorf("String:\n%s", s)
	}

	m.Reset()
	if len(m.Queries()) != 0 {
		t.Error("Reset didn't clear")
	}
}
