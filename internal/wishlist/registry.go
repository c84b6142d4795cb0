package wishlist

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoVisitor = errors.New("wishlist: visitor id is required")

type cached struct {
	store    *Store
	lastUsed time.Time
}

// Registry hands out one Store per active visitor. Stores are only cached
// once a visitor asks for a mutable one; idle stores are evicted by the
// janitor and reloaded from the backend on the next visit.
type Registry struct {
	mu      sync.Mutex
	backend Backend
	stores  map[string]*cached
	now     func() time.Time
}

func NewRegistry(backend Backend) *Registry {
	return &Registry{backend: backend, stores: make(map[string]*cached), now: time.Now}
}

// KeyFor is the storage key of a visitor's wishlist.
func KeyFor(visitor string) string {
	return DefaultKey + ":" + visitor
}

// For returns the visitor's store, loading and caching it on first use.
func (r *Registry) For(ctx context.Context, visitor string) (*Store, error) {
	if visitor == "" {
		return nil, ErrNoVisitor
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.stores[visitor]; ok {
		c.lastUsed = r.now()
		return c.store, nil
	}
	s, err := Open(ctx, r.backend, KeyFor(visitor))
	if err != nil {
		return nil, err
	}
	r.stores[visitor] = &cached{store: s, lastUsed: r.now()}
	return s, nil
}

// IDs reads the visitor's wishlist without caching a store for them, so
// page views from visitors that never save a book cost no memory.
func (r *Registry) IDs(ctx context.Context, visitor string) ([]string, error) {
	if visitor == "" {
		return nil, ErrNoVisitor
	}
	r.mu.Lock()
	c, ok := r.stores[visitor]
	if ok {
		c.lastUsed = r.now()
	}
	r.mu.Unlock()
	if ok {
		return c.store.IDs(), nil
	}

	s, err := Open(ctx, r.backend, KeyFor(visitor))
	if err != nil {
		return nil, err
	}
	return s.IDs(), nil
}

// Len reports how many stores are cached.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// EvictIdle drops stores not used for longer than idle and returns how many
// went. A store's set is always persisted, so nothing is lost.
func (r *Registry) EvictIdle(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	n := 0
	for visitor, c := range r.stores {
		if c.lastUsed.Before(cutoff) {
			delete(r.stores, visitor)
			n++
		}
	}
	return n
}

// StartJanitor evicts idle stores every idle interval until ctx is done.
func (r *Registry) StartJanitor(ctx context.Context, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(idle)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.EvictIdle(idle)
			}
		}
	}()
}
