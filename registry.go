package zsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry is a cache of database connections by name.
//
// A Registry is safe for concurrent use; the DBs it hands out are not, so
// don't share a name between goroutines.
type Registry struct {
	mu  sync.Mutex
	dbs map[string]*DB
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{dbs: make(map[string]*DB)}
}

// Get returns the connection for name, connecting with opts on the first Get
// for it. Later calls return the same *DB and ignore opts.
//
// A failed connect caches nothing; the next Get connects again.
func (r *Registry) Get(ctx context.Context, name string, opts ConnectOptions) (*DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.dbs[name]; ok {
		return db, nil
	}
	db, err := Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("zsql.Registry.Get %q: %w", name, err)
	}
	r.dbs[name] = db
	return db, nil
}

// Names returns the names of the cached connections, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.dbs))
	for n := range r.dbs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close all cached connections; the Registry is empty and usable after.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for n, db := range r.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", n, err))
		}
	}
	r.dbs = make(map[string]*DB)
	return errors.Join(errs...)
}
