package ports

import (
	"context"

	"github.com/aretw0/automata/pkg/schema"
)

// Library defines a read-only source of machine documents.
// This allows curated example machines (Loam, embedded files) to be decoupled from storage.
type Library interface {
	// Get retrieves a document by ID.
	// Returns ErrDocumentNotFound if the ID is unknown.
	Get(ctx context.Context, id string) (*schema.Document, error)

	// List returns the IDs of all documents in the library.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for libraries that can notify about backend changes.
// This is typically used for hot-reload in dev-mode.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed document.
	Watch(ctx context.Context) (<-chan string, error)
}
