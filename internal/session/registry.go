package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sessionresults/domain/core"
	"sessionresults/internal"
)

// Page is anything the registry can tear down
type Page interface {
	Close()
}

type entry[P Page] struct {
	page     P
	lastSeen time.Time
}

// Registry keeps open pages by id and closes them once they sit idle longer than ttl
type Registry[P Page] struct {
	ttl    time.Duration
	now    func() time.Time
	logger *internal.Logger

	mu     sync.Mutex
	pages  map[core.PageID]*entry[P]
	closed bool
}

// NewRegistry creates a registry with the given idle ttl
func NewRegistry[P Page](ttl time.Duration, logger *internal.Logger) *Registry[P] {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Registry[P]{
		ttl:    ttl,
		now:    time.Now,
		logger: logger.Named("Pages"),
		pages:  make(map[core.PageID]*entry[P]),
	}
}

// Put registers page under a fresh id
func (r *Registry[P]) Put(page P) (core.PageID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		page.Close()
		return "", core.ErrPageClosed
	}

	id := core.NewPageID()
	r.pages[id] = &entry[P]{page: page, lastSeen: r.now()}
	r.logger.Debug("opened page %s (%d open)", id, len(r.pages))
	return id, nil
}

// Get returns the page and refreshes its idle timer
func (r *Registry[P]) Get(id core.PageID) (P, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.pages[id]
	if !ok {
		var zero P
		return zero, fmt.Errorf("%w: %s", core.ErrPageNotFound, id)
	}
	e.lastSeen = r.now()
	return e.page, nil
}

// Remove closes the page and forgets it. Removing an unknown id is a no-op.
func (r *Registry[P]) Remove(id core.PageID) bool {
	r.mu.Lock()
	e, ok := r.pages[id]
	delete(r.pages, id)
	r.mu.Unlock()

	if ok {
		e.page.Close()
		r.logger.Debug("closed page %s", id)
	}
	return ok
}

// Len returns the number of open pages
func (r *Registry[P]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep closes every page idle for longer than the ttl and returns how many it closed
func (r *Registry[P]) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []P
	for id, e := range r.pages {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.page)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for _, p := range expired {
		p.Close()
	}
	if len(expired) > 0 {
		r.logger.Info("swept %d idle pages", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes the registry
func (r *Registry[P]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer r.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close closes every page. Later Puts are rejected.
func (r *Registry[P]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	pages := r.pages
	r.pages = make(map[core.PageID]*entry[P])
	r.mu.Unlock()

	for _, e := range pages {
		e.page.Close()
	}
}
