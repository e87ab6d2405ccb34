// Package store defines the keyed collection contract the ledger persists
// its sub-ledger records through. The ledger never depends on how a
// collection is encoded or transported.
package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Record is anything stored in a Collection.
type Record interface {
	RecordID() string
}

// Collection is a durable, keyed, insertion-ordered set of records.
type Collection[T Record] interface {
	// GetAll returns every record in insertion order.
	GetAll(ctx context.Context) ([]T, error)
	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)
	// Add inserts a new record; ErrAlreadyExists if the ID is taken.
	Add(ctx context.Context, rec T) error
	// Update replaces an existing record; ErrNotFound if absent.
	Update(ctx context.Context, rec T) error
	// Upsert inserts or replaces.
	Upsert(ctx context.Context, rec T) error
	// Delete removes a record; ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}
