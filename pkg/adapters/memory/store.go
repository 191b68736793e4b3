package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*schema.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*schema.Document),
	}
}

// Save keeps a copy of the document, so later edits by the caller do not leak in.
func (s *Store) Save(ctx context.Context, key string, doc *schema.Document) error {
	copied := doc.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Load returns a copy of the stored document.
func (s *Store) Load(ctx context.Context, key string) (*schema.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.data[key]
	if !ok {
		return nil, ports.ErrDocumentNotFound
	}
	return doc.Clone(), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
