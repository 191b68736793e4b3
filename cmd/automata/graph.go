package main

import (
	"fmt"

	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [machine]",
	Short: "Export the machine as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the machine. With --current the initial state is highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetBool("current")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		doc, err := resolveDocument(cmd.Context(), e.lab, argOrEmpty(args))
		if err != nil {
			return err
		}
		m, _, err := schema.NewMachine(doc)
		if err != nil {
			printValidation(cmd, doc.Name, err)
			return fmt.Errorf("invalid machine %s", doc.Name)
		}

		var overlay *graph.Overlay
		if current {
			m.Reset()
			overlay = graph.OverlayFor(m, nil)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(m, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("current", false, "Highlight the state a reset world starts in")
}
