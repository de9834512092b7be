package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/adapters/loam"
	"github.com/aretw0/turing/pkg/machines"
	"github.com/aretw0/turing/pkg/ports"
)

// ListMachines prints the name, rule count and description of every
// definition the loader knows.
func ListMachines(ctx context.Context, loader ports.DefinitionLoader, w io.Writer) error {
	names, err := loader.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tRULES\tDESCRIPTION")
	for _, name := range names {
		def, err := loader.Get(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", def.Name, def.Table.Len(), def.Description)
	}
	return tw.Flush()
}

// ExportBuiltins writes the built-in machines into a loam repository at dir.
func ExportBuiltins(ctx context.Context, dir string, w io.Writer) error {
	repo, err := loam.OpenWritable(dir)
	if err != nil {
		return err
	}
	for _, def := range machines.Builtin() {
		if err := repo.Save(ctx, def); err != nil {
			return fmt.Errorf("export %s: %w", def.Name, err)
		}
		printSystemMessage(w, "Exported '%s'.", def.Name)
	}
	return nil
}

// Validate checks the named definitions, or all of them when names is
// empty, and prints a report per machine. It fails if any has errors.
func Validate(ctx context.Context, loader ports.DefinitionLoader, names []string, w io.Writer) error {
	if len(names) == 0 {
		all, err := loader.List(ctx)
		if err != nil {
			return err
		}
		names = all
	}

	failed := 0
	for _, name := range names {
		def, err := loader.Get(ctx, name)
		if err != nil {
			fmt.Fprintf(w, "✗ %s: %v\n", name, err)
			failed++
			continue
		}
		report := runtime.Validate(def)
		if report.OK() {
			fmt.Fprintf(w, "✓ %s\n", name)
		} else {
			fmt.Fprintf(w, "✗ %s\n", name)
			failed++
		}
		for _, e := range report.Errors {
			fmt.Fprintf(w, "    error: %s\n", e)
		}
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "    warning: %s\n", warn)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d machines failed validation", failed, len(names))
	}
	return nil
}
