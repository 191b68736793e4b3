package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/automata"
	httpAdapter "github.com/aretw0/automata/pkg/adapters/http"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [machine]",
	Short: "Serve a world over HTTP",
	Long: `Loads a machine into a world and exposes it as a JSON API: read the machine and
the world, drive sensors, start, pause, stop, reset and step. Prometheus metrics are
served on /metrics unless disabled in the config. With --watch the machine is reloaded
whenever its library document changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.HTTP.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		id := argOrEmpty(args)
		doc, err := resolveDocument(ctx, e.lab, id)
		if err != nil {
			return err
		}
		w, err := e.lab.LoadDocument(doc)
		if err != nil {
			printValidation(cmd, doc.Name, err)
			return fmt.Errorf("cannot serve %s", doc.Name)
		}
		defer observability.LogEvents(e.logger, w)()

		handlerOpts := []httpAdapter.Option{httpAdapter.WithLogger(e.logger)}
		if e.cfg.Metrics.Enabled {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			defer observability.NewMetrics(reg).Attach(w)()
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(reg))
		}

		if watch {
			if id == "" {
				id = DemoID
			}
			if err := watchLibrary(ctx, e.lab, id, e.logger); err != nil {
				e.logger.Warn("hot reload disabled", "err", err)
			}
		}

		srv := &http.Server{
			Addr:    e.cfg.HTTP.Addr,
			Handler: httpAdapter.NewHandler(w, handlerOpts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			e.logger.Info("HTTP server listening", "address", srv.Addr, "machine", doc.Name)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			w.Pause()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				e.logger.Error("graceful shutdown did not complete", "err", err)
				_ = srv.Close()
			}
			e.logger.Info("HTTP server stopped")
			return nil
		}
	},
}

// watchLibrary reloads id into the lab's world whenever the library reports
// a change to it. A running world is restarted after the reload.
func watchLibrary(ctx context.Context, lab *automata.Lab, id string, logger *slog.Logger) error {
	changes, err := lab.Watch(ctx)
	if err != nil {
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case changed, ok := <-changes:
				if !ok {
					return nil
				}
				if changed != id {
					continue
				}
				wasRunning := lab.World().IsRunning()
				w, err := lab.Load(ctx, id)
				if err != nil {
					logger.Warn("reload failed, keeping the previous machine", "id", id, "err", err)
					continue
				}
				logger.Info("machine reloaded", "id", id)
				if wasRunning {
					w.Start()
				}
			}
		}
	})
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides config http.addr)")
	serveCmd.Flags().Bool("watch", false, "Reload the machine when its library document changes")
}
