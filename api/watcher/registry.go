/* registry.go
 * Contains the Registry of watchers, one per league. The registry is created by main and passed to whatever needs to
 * look up the connection of a league
 */

package watcher

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the watcher of every league by name
type Registry struct {
	mu       sync.RWMutex
	watchers map[string]*Watcher
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{watchers: make(map[string]*Watcher)}
}

// Add registers the watcher of a league. A league can only be registered once
func (r *Registry) Add(w *Watcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchers[w.League()]; ok {
		return fmt.Errorf("league %s is already watched", w.League())
	}
	r.watchers[w.League()] = w
	return nil
}

// Get returns the watcher of a league
func (r *Registry) Get(league string) (*Watcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.watchers[league]
	return w, ok
}

// Watch (re)starts the stream of a league
func (r *Registry) Watch(league string) error {
	w, ok := r.Get(league)
	if !ok {
		return fmt.Errorf("league %s is not watched", league)
	}
	w.Watch()
	return nil
}

// All returns every watcher sorted by league name
func (r *Registry) All() []*Watcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Watcher, 0, len(r.watchers))
	for _, w := range r.watchers {
		all = append(all, w)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].League() < all[j].League() })
	return all
}

// StopAll stops every watcher concurrently and waits for them to exit
func (r *Registry) StopAll() {
	var wg sync.WaitGroup
	for _, w := range r.All() {
		wg.Add(1)
		go func(w *Watcher) {
			defer wg.Done()
			w.Stop()
		}(w)
	}
	wg.Wait()
}
