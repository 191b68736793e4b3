package main

import (
	"fmt"

	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table [machine]",
	Short: "Print the machine's transition table",
	Long:  `Renders the transitions, grouped by source state in priority order, as a markdown table. On a terminal the table is styled.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		out, err := tui.NewRenderer()(tui.TransitionTable(doc.Name, m))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}
