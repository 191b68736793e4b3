package main

import (
	"fmt"

	"github.com/aretw0/automata/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [machine...]",
	Short: "Check machines for consistency",
	Long:  `Validates the named machines, or every machine in the library and store: vector lengths, signal alphabet, unique ids and transition endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		if len(args) == 0 {
			args, err = e.lab.Documents(ctx)
			if err != nil {
				return err
			}
		}

		failed := 0
		for _, arg := range args {
			doc, err := resolveDocument(ctx, e.lab, arg)
			if err == nil {
				err = schema.Validate(doc)
			}
			if err != nil {
				printValidation(cmd, arg, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d states, %d transitions)\n", arg, len(doc.States), len(doc.Transitions))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d machines invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
