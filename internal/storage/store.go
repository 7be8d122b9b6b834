// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/dangidongi/internal/models"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("no saved ledger")

// Store defines the interface for ledger persistence.
// This abstraction allows swapping storage backends (JSON file, SQLite)
// without changing the service layer.
type Store interface {
	// Load retrieves the last saved ledger document.
	// Returns ErrNotFound if nothing was saved yet.
	Load(ctx context.Context) (*models.Document, error)

	// Save replaces the stored ledger with doc.
	Save(ctx context.Context, doc *models.Document) error

	// Close releases any resources held by the store.
	Close() error
}
