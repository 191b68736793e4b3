package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/aretw0/automata/pkg/world"
)

// DefaultLockTTL bounds how long a crashed instance can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates document access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.DocumentStore
	library ports.Library // optional read-only fallback

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLibrary adds a read-only source consulted when a key is not in the store.
func WithLibrary(lib ports.Library) Option {
	return func(m *Manager) {
		m.library = lib
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Save snapshots the world and stores it under key.
func (m *Manager) Save(ctx context.Context, key string, w *world.World) error {
	doc := w.Snapshot()
	if doc.Name == "" {
		doc.Name = key
	}
	return m.SaveDocument(ctx, key, doc)
}

// SaveDocument validates and stores a document.
func (m *Manager) SaveDocument(ctx context.Context, key string, doc *schema.Document) error {
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("refusing to save invalid document %s: %w", key, err)
	}
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Save(ctx, key, doc)
	})
}

// Load fetches the document stored under key (or, failing that, the library
// document with that ID) and restores it into w.
func (m *Manager) Load(ctx context.Context, key string, w *world.World) (schema.Mapping, error) {
	doc, err := m.Document(ctx, key)
	if err != nil {
		return schema.Mapping{}, err
	}
	mapping, err := w.Load(doc)
	if err != nil {
		return schema.Mapping{}, fmt.Errorf("failed to restore %s: %w", key, err)
	}
	m.logger.Debug("machine loaded", "key", key, "states", len(doc.States), "transitions", len(doc.Transitions))
	return mapping, nil
}

// Document returns the stored document for key, falling back to the library.
func (m *Manager) Document(ctx context.Context, key string) (*schema.Document, error) {
	var doc *schema.Document
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, key)
		return err
	})
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ports.ErrDocumentNotFound) || m.library == nil {
		return nil, err
	}
	return m.library.Get(ctx, key)
}

// Delete removes the document from the store. Library documents are read-only.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List returns the union of stored keys and library IDs, stored keys first.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	keys, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if m.library == nil {
		return keys, nil
	}

	ids, err := m.library.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	for _, id := range ids {
		if !seen[id] {
			keys = append(keys, id)
		}
	}
	return keys, nil
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
