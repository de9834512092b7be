package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/pkg/ports"
)

// cfg is resolved before any command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "turing runs deterministic single-tape Turing machines",
	Long: `turing animates binary Turing machines on an unbounded tape.
Machines come from the built-in library, a YAML file (--file) or a
directory of markdown definitions (--dir).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		if !cmd.Flags().Changed("dir") && cfg.MachinesDir != "" {
			_ = cmd.Flags().Set("dir", cfg.MachinesDir)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "TOML configuration file")
	rootCmd.PersistentFlags().String("dir", "", "Directory of machine definitions (markdown with frontmatter)")
	rootCmd.PersistentFlags().StringP("file", "f", "", "Single YAML machine definition")
	rootCmd.PersistentFlags().StringP("machine", "m", "", "Machine name (defaults to the only or the incrementer)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every step to stderr")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func loaderFromFlags(cmd *cobra.Command) (ports.DefinitionLoader, error) {
	dir, _ := cmd.Flags().GetString("dir")
	file, _ := cmd.Flags().GetString("file")
	return cli.NewLoader(dir, file)
}

func serveOptions(cmd *cobra.Command) cli.ServeOptions {
	dir, _ := cmd.Flags().GetString("dir")
	file, _ := cmd.Flags().GetString("file")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.ServeOptions{Dir: dir, File: file, Debug: debug, Config: cfg}
}
