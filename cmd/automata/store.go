package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored machines and library machines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		ids, err := e.lab.Documents(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <machine> <key>",
	Short: "Copy a machine into the configured store",
	Long:  `Reads a machine (file, library ID or stored key), validates it and saves it under key in the configured store (memory, file or redis).`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		doc, err := resolveDocument(cmd.Context(), e.lab, args[0])
		if err != nil {
			return err
		}
		if err := e.lab.Manager().SaveDocument(cmd.Context(), args[1], doc); err != nil {
			printValidation(cmd, args[0], err)
			return fmt.Errorf("save failed")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s as %s (%s store)\n", args[0], args[1], e.cfg.Store.Backend)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a machine from the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		return e.lab.Manager().Delete(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd, saveCmd, deleteCmd)
}
