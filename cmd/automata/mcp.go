package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/automata/pkg/adapters/mcp"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [machine]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Loads a machine into a world and exposes it as an MCP Server,
so AI agents can inspect the machine, drive sensors and step the world as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		doc, err := resolveDocument(cmd.Context(), e.lab, argOrEmpty(args))
		if err != nil {
			return err
		}
		w, err := e.lab.LoadDocument(doc)
		if err != nil {
			printValidation(cmd, doc.Name, err)
			return fmt.Errorf("cannot serve %s", doc.Name)
		}
		defer observability.LogEvents(e.logger, w)()

		srv := mcp.NewServer(w, e.logger)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			e.logger.Info("Starting MCP server (stdio)", "machine", doc.Name)
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			w.Pause()
			e.logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
