package memory

import (
	"testing"

	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/store"
	"github.com/cleared-dev/books/internal/store/storetest"
)

func TestCollection(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Collection[model.Vendor] {
		return New[model.Vendor]("vendors")
	})
}
