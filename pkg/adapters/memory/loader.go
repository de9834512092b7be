package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machines"
)

// Loader implements ports.DefinitionLoader over a fixed set of definitions.
type Loader struct {
	defs map[string]*domain.Definition
}

// NewLoader creates a loader serving defs. Later definitions win on name clashes.
func NewLoader(defs ...*domain.Definition) (*Loader, error) {
	l := &Loader{defs: make(map[string]*domain.Definition, len(defs))}
	for _, def := range defs {
		if def == nil || def.Name == "" {
			return nil, fmt.Errorf("definition missing name")
		}
		l.defs[def.Name] = def
	}
	return l, nil
}

// NewBuiltinLoader serves the built-in machine library.
func NewBuiltinLoader() *Loader {
	l, _ := NewLoader(machines.Builtin()...)
	return l
}

// Get returns the named definition.
func (l *Loader) Get(ctx context.Context, name string) (*domain.Definition, error) {
	def, ok := l.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	return def, nil
}

// List returns all machine names.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(l.defs))
	for name := range l.defs {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}
