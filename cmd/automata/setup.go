package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/config"
	"github.com/aretw0/automata/internal/demo/robot"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/adapters/file"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/adapters/redis"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/aretw0/automata/pkg/world"
	"github.com/spf13/cobra"
)

// DemoID is the bundled machine available when no library directory is configured.
const DemoID = "wall-follower"

// env is what every command needs: configuration, a logger and a lab.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	lab    *automata.Lab
	close  func()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath
	}
	if explicit {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Library = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// newStore builds the configured document store. The locker is nil except for redis.
func newStore(cfg *config.Config) (ports.DocumentStore, ports.DistributedLocker, func(), error) {
	switch cfg.Store.Backend {
	case "file":
		return file.New(cfg.Store.Path), nil, func() {}, nil
	case "redis":
		var opts []redis.Option
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		if cfg.Store.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Store.Redis.TTL))
		}
		store := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, opts...)
		locker := redis.NewLocker(store.Client(), cfg.Store.Redis.Prefix)
		return store, locker, func() { _ = store.Close() }, nil
	default:
		return memory.NewStore(), nil, func() {}, nil
	}
}

// setup wires config, logging, storage and the document library.
func setup(cmd *cobra.Command, worldOpts ...world.Option) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	store, locker, closeStore, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	opts := []automata.Option{
		automata.WithLogger(logger),
		automata.WithStore(store),
		automata.WithWorldOptions(world.WithTimeStep(cfg.TimeStep)),
		automata.WithWorldOptions(worldOpts...),
	}
	if locker != nil {
		opts = append(opts, automata.WithLocker(locker))
	}

	var lab *automata.Lab
	if cfg.Library != "" {
		lab, err = automata.Open(cfg.Library, opts...)
		if err != nil {
			closeStore()
			return nil, err
		}
	} else {
		demo := memory.NewLibrary(map[string]*schema.Document{DemoID: robot.WallFollower()})
		lab = automata.New(append(opts, automata.WithLibrary(demo))...)
	}

	logger.Debug("lab ready", "library", cfg.Library, "store", cfg.Store.Backend)
	return &env{cfg: cfg, logger: logger, lab: lab, close: closeStore}, nil
}

// resolveDocument reads arg as a file when it names one, else as a library or store ID.
func resolveDocument(ctx context.Context, lab *automata.Lab, arg string) (*schema.Document, error) {
	if arg == "" {
		arg = DemoID
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		doc, err := schema.Unmarshal(data, schema.FormatFromPath(arg))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if doc.Name == "" {
			base := filepath.Base(arg)
			doc.Name = base[:len(base)-len(filepath.Ext(base))]
		}
		return doc, nil
	}

	doc, err := lab.Manager().Document(ctx, arg)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return nil, fmt.Errorf("no machine %q: not a file, a stored key or a library ID", arg)
	}
	return doc, err
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// printValidation writes one line per validation problem.
func printValidation(cmd *cobra.Command, name string, err error) {
	list := schema.ValidationErrors(err)
	if len(list) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
		return
	}
	for _, e := range list {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, e)
	}
}
