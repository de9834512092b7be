package main

import (
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/cli"
)

var stepCmd = &cobra.Command{
	Use:   "step [input]",
	Short: "Print every configuration of a bounded run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := loaderFromFlags(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext(cmd)
		defer stop()

		name, _ := cmd.Flags().GetString("machine")
		def, err := cli.ResolveDefinition(ctx, loader, name)
		if err != nil {
			return err
		}
		engine, err := turing.New(def)
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.MaxSteps
		}
		input := ""
		if len(args) > 0 {
			input = args[0]
		}
		profile := termenv.NewOutput(os.Stdout).EnvColorProfile()
		_, err = cli.Trace(ctx, engine, input, limit, os.Stdout, profile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.Flags().IntP("limit", "n", 0, "Maximum number of steps (default from config)")
}
