package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/aretw0/loam"
)

// Library adapts a Loam repository to ports.Library.
//
// Every .md, .json, .yaml or .yml file is a machine document. Markdown files
// carry the document in their frontmatter and the body becomes the
// description. IDs are file paths without extension, unless the document sets
// its own "id" key.
type Library struct {
	Repo *loam.TypedRepository[Entry]
}

// Entry is the document as Loam decodes it: the schema plus an optional explicit ID.
type Entry struct {
	ID              string `json:"id" mapstructure:"id"`
	schema.Document `mapstructure:",squash"`
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[Entry]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string) (*Library, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init loam library: %w", err)
	}
	return New(loam.NewTypedRepository[Entry](repo)), nil
}

// Get retrieves the document by ID.
func (l *Library) Get(ctx context.Context, id string) (*schema.Document, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		// Loam reports misses in its own terms; the listing is authoritative.
		if ids, lerr := l.List(ctx); lerr == nil && !contains(ids, id) {
			return nil, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	out := doc.Data.Document.Clone()
	if out.Name == "" {
		out.Name = idOf(doc.Data.ID, doc.ID)
	}
	if out.Description == "" {
		out.Description = strings.TrimSpace(doc.Content)
	}
	return out, nil
}

// List lists all documents in the repository.
func (l *Library) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := idOf(doc.Data.ID, doc.ID)
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Watch implements ports.Watchable.
func (l *Library) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func idOf(explicit, path string) string {
	if explicit != "" {
		return trimExtension(explicit)
	}
	return trimExtension(path)
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
