package zsql

import (
	"container/list"
	"database/sql"
)

// stmtCache is an LRU cache of prepared statements, keyed by the exact SQL
// text sent to the engine. Evicted statements are closed.
type stmtCache struct {
	size  int
	order *list.List // front is most recently used
	byKey map[string]*list.Element
}

type stmtEntry struct {
	key  string
	stmt *sql.Stmt
}

func newStmtCache(size int) *stmtCache {
	if size < 1 {
		size = 1
	}
	return &stmtCache{
		size:  size,
		order: list.New(),
		byKey: make(map[string]*list.Element, size),
	}
}

func (c *stmtCache) get(key string) (*sql.Stmt, bool) {
	el, ok := c.byKey[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(stmtEntry).stmt, true
}

func (c *stmtCache) put(key string, stmt *sql.Stmt) {
	if el, ok := c.byKey[key]; ok {
		el.Value.(stmtEntry).stmt.Close()
		el.Value = stmtEntry{key, stmt}
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.size {
		last := c.order.Back()
		c.order.Remove(last)
		e := last.Value.(stmtEntry)
		delete(c.byKey, e.key)
		e.stmt.Close()
	}
	c.byKey[key] = c.order.PushFront(stmtEntry{key, stmt})
}

func (c *stmtCache) len() int { return c.order.Len() }

func (c *stmtCache) clear() {
	for el := c.order.Front(); el != nil; el = el.Next() {
		el.Value.(stmtEntry).stmt.Close()
	}
	c.order.Init()
	clear(c.byKey)
}
