package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/turing/internal/cli"
)

var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "List the available machines",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := loaderFromFlags(cmd)
		if err != nil {
			return err
		}
		return cli.ListMachines(cmd.Context(), loader, os.Stdout)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write the built-in machines as markdown definitions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ExportBuiltins(cmd.Context(), args[0], os.Stdout)
	},
}

func init() {
	machinesCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(machinesCmd)
}
