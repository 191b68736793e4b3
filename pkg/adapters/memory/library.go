package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
)

// Library implements ports.Library over a fixed set of documents.
type Library struct {
	docs map[string]*schema.Document
}

// NewLibrary creates a library from documents keyed by ID.
func NewLibrary(docs map[string]*schema.Document) *Library {
	copied := make(map[string]*schema.Document, len(docs))
	for id, d := range docs {
		copied[id] = d.Clone()
	}
	return &Library{docs: copied}
}

// NewLibraryFromYAML parses raw YAML documents, which keeps test fixtures readable.
func NewLibraryFromYAML(data map[string]string) (*Library, error) {
	docs := make(map[string]*schema.Document, len(data))
	for id, raw := range data {
		doc, err := schema.Unmarshal([]byte(raw), schema.FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", id, err)
		}
		docs[id] = doc
	}
	return &Library{docs: docs}, nil
}

func (l *Library) Get(ctx context.Context, id string) (*schema.Document, error) {
	doc, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, id)
	}
	return doc.Clone(), nil
}

func (l *Library) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
