// Package state stores catalog documents in SQLite so the builder can serve
// a seeded catalog instead of reading a file on every page load.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/folio/internal/catalog"
)

// Import records one catalog import.
type Import struct {
	ID         string
	Source     string
	Modules    int
	Projects   int
	ImportedAt time.Time
}

// Store is the catalog store used by the CLI and the UI server.
type Store interface {
	catalog.Source

	// ImportCatalog replaces the stored catalog with doc.
	ImportCatalog(ctx context.Context, doc catalog.Document, source string) (*Import, error)
	// LastImport returns the most recent import, or nil if the store has
	// never been seeded.
	LastImport(ctx context.Context) (*Import, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
