// Package yamlfile provides a store.Collection persisted as one YAML file.
//
// The whole collection is rewritten on every mutation via a temp file and
// rename, so a crash never leaves a half-written document behind.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/books/internal/store"
)

// Collection stores records of type T in <dir>/<name>.yaml.
type Collection[T store.Record] struct {
	mu   sync.Mutex
	name string
	path string
}

// New returns a collection backed by <dir>/<name>.yaml. The file is created
// lazily on first write.
func New[T store.Record](dir, name string) *Collection[T] {
	return &Collection[T]{name: name, path: filepath.Join(dir, name+".yaml")}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string { return c.path }

func (c *Collection[T]) GetAll(_ context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	recs, err := c.read()
	if err != nil {
		return zero, err
	}
	if i := indexOf(recs, id); i >= 0 {
		return recs[i], nil
	}
	return zero, fmt.Errorf("%s %s: %w", c.name, id, store.ErrNotFound)
}

func (c *Collection[T]) Add(_ context.Context, rec T) error {
	return c.mutate(func(recs []T) ([]T, error) {
		if indexOf(recs, rec.RecordID()) >= 0 {
			return nil, fmt.Errorf("%s %s: %w", c.name, rec.RecordID(), store.ErrAlreadyExists)
		}
		return append(recs, rec), nil
	})
}

func (c *Collection[T]) Update(_ context.Context, rec T) error {
	return c.mutate(func(recs []T) ([]T, error) {
		i := indexOf(recs, rec.RecordID())
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", c.name, rec.RecordID(), store.ErrNotFound)
		}
		recs[i] = rec
		return recs, nil
	})
}

func (c *Collection[T]) Upsert(_ context.Context, rec T) error {
	return c.mutate(func(recs []T) ([]T, error) {
		if i := indexOf(recs, rec.RecordID()); i >= 0 {
			recs[i] = rec
			return recs, nil
		}
		return append(recs, rec), nil
	})
}

func (c *Collection[T]) Delete(_ context.Context, id string) error {
	return c.mutate(func(recs []T) ([]T, error) {
		i := indexOf(recs, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", c.name, id, store.ErrNotFound)
		}
		return append(recs[:i], recs[i+1:]...), nil
	})
}

func (c *Collection[T]) mutate(fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.read()
	if err != nil {
		return err
	}
	recs, err = fn(recs)
	if err != nil {
		return err
	}
	return c.write(recs)
}

func (c *Collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.name, err)
	}
	var recs []T
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.name, err)
	}
	return recs, nil
}

func (c *Collection[T]) write(recs []T) error {
	if recs == nil {
		recs = []T{}
	}
	data, err := yaml.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", c.name, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating %s dir: %w", c.name, err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing %s: %w", c.name, err)
	}
	return nil
}

func indexOf[T store.Record](recs []T, id string) int {
	for i, r := range recs {
		if r.RecordID() == id {
			return i
		}
	}
	return -1
}
