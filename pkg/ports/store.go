package ports

import (
	"context"
	"errors"

	"github.com/aretw0/automata/pkg/schema"
)

// ErrDocumentNotFound is returned when a key does not exist in a store or library.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore defines the interface for persisting machine documents.
// This allows a world's graph and parameters to survive restarts ("Save & Load").
type DocumentStore interface {
	// Save persists the document under key, replacing any previous value.
	Save(ctx context.Context, key string, doc *schema.Document) error

	// Load retrieves the document stored under key.
	// Returns ErrDocumentNotFound if the key does not exist.
	Load(ctx context.Context, key string) (*schema.Document, error)

	// Delete removes the document. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys.
	List(ctx context.Context) ([]string, error)
}
