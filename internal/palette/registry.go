package palette

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateID is returned when a controller id is registered twice
var ErrDuplicateID = errors.New("palette id already registered")

// Registry owns the controllers of a host, keyed by instance id
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// Register adds c under its id
func (r *Registry) Register(c *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.controllers[c.ID()]; exists {
		return fmt.Errorf("register %q: %w", c.ID(), ErrDuplicateID)
	}
	r.controllers[c.ID()] = c
	return nil
}

// Get returns the controller registered under id
func (r *Registry) Get(id string) (*Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[id]
	return c, ok
}

// Remove forgets id
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, id)
}

// IDs returns the registered ids in sorted order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
