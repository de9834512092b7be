package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
)

// DefinitionLoader resolves machine definitions by name.
type DefinitionLoader interface {
	// Get returns the named definition.
	// Returns domain.ErrMachineNotFound if no such machine exists.
	Get(ctx context.Context, name string) (*domain.Definition, error)

	// List returns the names of all available machines, sorted.
	List(ctx context.Context) ([]string, error)
}
