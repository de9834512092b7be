package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [input]",
	Short: "Export the state diagram of a machine",
	Long: `Outputs a Mermaid flowchart (graph LR) of the control states.
With an input, the states visited by a run on that input are highlighted.`,
	Args: cobra.MaximumNArgs(1),
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

		var overlay *graph.GraphOverlay
		if len(args) > 0 {
			engine, err := turing.New(def)
			if err != nil {
				return err
			}
			res, err := engine.Run(cmd.Context(), engine.NewState(args[0]), cfg.MaxSteps)
			if err != nil && !errors.Is(err, turing.ErrStepLimit) {
				return err
			}
			overlay = graph.OverlayFromHistory(res.State, res.History)
		}

		fmt.Print(graph.GenerateMermaid(def, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
