package memory

import (
	"fmt"
	"sync"

	"lexdesk/internal/domain"
)

// collection is a process-local table of records keyed by ID.
// Records go in and come out as deep copies, so no caller can alias stored state.
type collection[T any] struct {
	mu       sync.RWMutex
	resource string
	items    map[string]*T
	order    []string // insertion order
	clone    func(*T) *T
}

func newCollection[T any](resource string, clone func(*T) *T) *collection[T] {
	return &collection[T]{
		resource: resource,
		items:    make(map[string]*T),
		clone:    clone,
	}
}

func (c *collection[T]) get(id string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, domain.NewNotFound(c.resource, id)
	}
	return c.clone(item), nil
}

// list returns copies of every record matching keep, in insertion order
func (c *collection[T]) list(keep func(*T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		item := c.items[id]
		if keep == nil || keep(item) {
			out = append(out, *c.clone(item))
		}
	}
	return out
}

func (c *collection[T]) create(id string, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[id]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("%s already exists: %s", c.resource, id),
			ResourceType: c.resource,
			ResourceID:   id,
		}
	}
	c.items[id] = c.clone(item)
	c.order = append(c.order, id)
	return nil
}

// update replaces the whole record
func (c *collection[T]) update(id string, item *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[id]; !exists {
		return domain.NewNotFound(c.resource, id)
	}
	c.items[id] = c.clone(item)
	return nil
}
