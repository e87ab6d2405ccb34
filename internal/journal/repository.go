package journal

import (
	"context"
	"slices"
	"sync"

	"github.com/cleared-dev/books/internal/model"
)

// Repository is the append-only persistence behind the journal. There is no
// update or delete: corrections are new offsetting entries.
type Repository interface {
	Append(ctx context.Context, e model.JournalEntry) error
	All(ctx context.Context) ([]model.JournalEntry, error)
}

// MemoryRepository keeps entries in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []model.JournalEntry
}

// NewMemoryRepository returns an empty in-memory journal.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, e model.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.Lines = slices.Clone(e.Lines)
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepository) All(_ context.Context) ([]model.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.JournalEntry, len(r.entries))
	for i, e := range r.entries {
		e.Lines = slices.Clone(e.Lines)
		out[i] = e
	}
	return out, nil
}
