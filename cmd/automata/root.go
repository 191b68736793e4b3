package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "automata",
	Short: "Automata runs finite-state machines that drive simple reactive worlds",
	Long: `Automata loads state machine documents (YAML, JSON or Markdown with front matter),
runs them against a world on a fixed tick, and exposes the world over HTTP or MCP.

Machines are referenced by library ID or by file path.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./automata.yaml when present)")
	rootCmd.PersistentFlags().String("dir", "", "Directory containing machine documents (overrides config 'library')")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}
