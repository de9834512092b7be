package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/turing/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Animate a machine on the given input",
	Long: `Loads the input onto the tape and runs the machine.
On a terminal the tape is animated and the keyboard controls the run;
otherwise the machine runs until it halts or rejects.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{Config: cfg}
		opts.Dir, _ = cmd.Flags().GetString("dir")
		opts.File, _ = cmd.Flags().GetString("file")
		opts.Machine, _ = cmd.Flags().GetString("machine")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Input, _ = cmd.Flags().GetString("input")
		opts.Speed, _ = cmd.Flags().GetDuration("speed")
		opts.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		if len(args) > 0 {
			opts.Input = args[0]
		}

		ctx, stop := signalContext(cmd)
		defer stop()
		return cli.RunMachine(ctx, opts, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "Initial tape; characters other than 0 and 1 are dropped")
	runCmd.Flags().Duration("speed", 0, "Delay between auto-run steps (default from config, 200ms)")
	runCmd.Flags().Int("max-steps", 0, "Step limit for headless and JSON runs (default from config)")
	runCmd.Flags().Bool("headless", false, "Run to completion and print the final tape")
	runCmd.Flags().Bool("json", false, "Print every configuration as NDJSON")

	rootCmd.Args = runCmd.Args
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
