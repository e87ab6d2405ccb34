// Package memory provides an in-process store.Collection.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cleared-dev/books/internal/store"
)

// Collection keeps records in a map with a separate insertion order.
type Collection[T store.Record] struct {
	mu    sync.RWMutex
	name  string
	byID  map[string]T
	order []string
}

// New creates an empty collection. name only appears in error messages.
func New[T store.Record](name string) *Collection[T] {
	return &Collection[T]{name: name, byID: make(map[string]T)}
}

func (c *Collection[T]) GetAll(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out, nil
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.byID[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", c.name, id, store.ErrNotFound)
	}
	return rec, nil
}

func (c *Collection[T]) Add(_ context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := rec.RecordID()
	if _, ok := c.byID[id]; ok {
		return fmt.Errorf("%s %s: %w", c.name, id, store.ErrAlreadyExists)
	}
	c.byID[id] = rec
	c.order = append(c.order, id)
	return nil
}

func (c *Collection[T]) Update(_ context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := rec.RecordID()
	if _, ok := c.byID[id]; !ok {
		return fmt.Errorf("%s %s: %w", c.name, id, store.ErrNotFound)
	}
	c.byID[id] = rec
	return nil
}

func (c *Collection[T]) Upsert(_ context.Context, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := rec.RecordID()
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = rec
	return nil
}

func (c *Collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return fmt.Errorf("%s %s: %w", c.name, id, store.ErrNotFound)
	}
	delete(c.byID, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
