package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/turing/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [machine...]",
	Short: "Check machine definitions for consistency",
	Long:  `Crawls each table from its start state and reports missing targets, dead ends and unreachable states.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := loaderFromFlags(cmd)
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("machine"); name != "" {
			args = append(args, name)
		}
		return cli.Validate(cmd.Context(), loader, args, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
