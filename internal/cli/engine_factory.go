package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/adapters/loam"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/schema"
)

// DefaultMachine is run when no machine is named and several exist.
const DefaultMachine = "incrementer"

// NewLoader picks the definition source: a single file, a loam directory,
// or the built-in library.
func NewLoader(dir, file string) (ports.DefinitionLoader, error) {
	switch {
	case file != "" && dir != "":
		return nil, errors.New("--file and --dir cannot be used together")
	case file != "":
		def, err := schema.LoadFile(file)
		if err != nil {
			return nil, err
		}
		return memory.NewLoader(def)
	case dir != "":
		return loam.Open(dir)
	default:
		return memory.NewBuiltinLoader(), nil
	}
}

// ResolveDefinition loads the named machine from loader.
func ResolveDefinition(ctx context.Context, loader ports.DefinitionLoader, name string) (*domain.Definition, error) {
	if name == "" {
		names, err := loader.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list machines: %w", err)
		}
		switch len(names) {
		case 0:
			return nil, fmt.Errorf("%w: no definitions found", domain.ErrMachineNotFound)
		case 1:
			name = names[0]
		default:
			name = DefaultMachine
		}
	}
	return loader.Get(ctx, name)
}

// createEngine initializes an engine with standard CLI conventions.
func createEngine(def *domain.Definition, logger *slog.Logger, debug bool) (*turing.Engine, error) {
	opts := []turing.Option{turing.WithLogger(logger)}
	if debug {
		opts = append(opts, turing.WithLifecycleHooks(observability.LoggingHooks(logger)))
	}
	engine, err := turing.New(def, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
