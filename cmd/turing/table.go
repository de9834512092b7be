package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/tui"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Show the transition table of a machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := loaderFromFlags(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("machine")
		def, err := cli.ResolveDefinition(cmd.Context(), loader, name)
		if err != nil {
			return err
		}

		md := tui.TableMarkdown(def)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Print(md)
			return nil
		}
		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}
