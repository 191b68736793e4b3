package automata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/automata/internal/logging"
	loamAdapter "github.com/aretw0/automata/pkg/adapters/loam"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/library"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/aretw0/automata/pkg/world"
)

// ErrNoWorld is returned by operations that need a loaded machine.
var ErrNoWorld = errors.New("no machine loaded")

// ErrLayoutMismatch is returned when a document's sensors or actuators differ
// from the lab's world, by count or by name.
var ErrLayoutMismatch = schema.ErrLayoutMismatch

// Lab is the high-level entry point: one World, fed from a document library
// and persisted through a store.
type Lab struct {
	Name string

	mu        sync.Mutex
	library   ports.Library
	store     ports.DocumentStore
	locker    ports.DistributedLocker
	manager   *library.Manager
	worldOpts []world.Option
	logger    *slog.Logger
	world     *world.World
}

// Option configures a Lab.
type Option func(*Lab)

// WithLibrary injects a read-only document source, bypassing the default Loam initialization.
func WithLibrary(lib ports.Library) Option {
	return func(l *Lab) {
		l.library = lib
	}
}

// WithStore sets where saved machines go. The default keeps them in memory.
func WithStore(store ports.DocumentStore) Option {
	return func(l *Lab) {
		l.store = store
	}
}

// WithLocker enables distributed locking of saved machines.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(l *Lab) {
		l.locker = locker
	}
}

// WithLogger sets a custom structured logger for the lab and its world.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lab) {
		l.logger = logger
	}
}

// WithWorldOptions passes options to the world created by the first Load.
func WithWorldOptions(opts ...world.Option) Option {
	return func(l *Lab) {
		l.worldOpts = append(l.worldOpts, opts...)
	}
}

// New creates a lab. Without WithLibrary only stored machines can be loaded.
func New(opts ...Option) *Lab {
	l := &Lab{}
	for _, opt := range opts {
		opt(l)
	}
	l.init()
	return l
}

// Open creates a lab whose library is the Loam repository at dir,
// unless WithLibrary is given.
func Open(dir string, opts ...Option) (*Lab, error) {
	l := &Lab{}
	for _, opt := range opts {
		opt(l)
	}

	if l.library == nil {
		if dir == "" {
			return nil, fmt.Errorf("dir is required when no custom library is provided")
		}
		lib, err := loamAdapter.Open(dir)
		if err != nil {
			return nil, err
		}
		l.library = lib
	}
	if dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			l.Name = filepath.Base(abs)
		}
	}
	l.init()
	return l, nil
}

func (l *Lab) init() {
	if l.logger == nil {
		l.logger = logging.NewNop()
	}
	if l.Name != "" {
		l.logger = l.logger.With("lab", l.Name)
	}
	if l.store == nil {
		l.store = memory.NewStore()
	}

	managerOpts := []library.Option{library.WithLogger(l.logger)}
	if l.library != nil {
		managerOpts = append(managerOpts, library.WithLibrary(l.library))
	}
	if l.locker != nil {
		managerOpts = append(managerOpts, library.WithLocker(l.locker))
	}
	l.manager = library.NewManager(l.store, managerOpts...)
}

// World returns the world, nil until the first Load.
func (l *Lab) World() *world.World {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.world
}

// Manager returns the save/load orchestrator.
func (l *Lab) Manager() *library.Manager {
	return l.manager
}

// Load restores the machine stored or published under id. The first Load
// creates the world from the document's layout; later loads must fit it.
func (l *Lab) Load(ctx context.Context, id string) (*world.World, error) {
	doc, err := l.manager.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	return l.LoadDocument(doc)
}

// LoadDocument is Load for a document already in hand.
func (l *Lab) LoadDocument(doc *schema.Document) (*world.World, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := schema.Validate(doc); err != nil {
		return nil, err
	}
	layout := schema.NewLayout(doc)
	if l.world == nil {
		opts := append([]world.Option{
			world.WithLogger(l.logger),
			world.WithStateVars(doc.StateVars),
		}, l.worldOpts...)
		l.world = world.New(layout, opts...)
	} else if err := schema.CheckLayout(doc, l.world.Layout()); err != nil {
		return nil, err
	}

	if _, err := l.world.Load(doc); err != nil {
		return nil, err
	}
	l.logger.Info("machine loaded", "name", doc.Name, "states", len(doc.States))
	return l.world, nil
}

// Save stores the world's machine under key.
func (l *Lab) Save(ctx context.Context, key string) error {
	w := l.World()
	if w == nil {
		return ErrNoWorld
	}
	return l.manager.Save(ctx, key, w)
}

// Documents lists stored keys and library IDs.
func (l *Lab) Documents(ctx context.Context) ([]string, error) {
	return l.manager.List(ctx)
}

// Watch returns a channel that signals when a library document changes.
// Returns error if the library does not support watching.
func (l *Lab) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := l.library.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current library does not support watching")
}
