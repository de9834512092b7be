package dsl

import (
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
)

// Builder manages the definition construction.
type Builder struct {
	def   domain.Definition
	halt  domain.ControlState
	rules []domain.Rule
}

// New creates a new definition builder.
func New(name string) *Builder {
	return &Builder{
		def: domain.Definition{Name: name},
	}
}

// Describe sets the human readable description.
func (b *Builder) Describe(text string) *Builder {
	b.def.Description = text
	return b
}

// Start sets the start state.
func (b *Builder) Start(state domain.ControlState) *Builder {
	b.def.Start = state
	return b
}

// Halt sets the halt state.
func (b *Builder) Halt(state domain.ControlState) *Builder {
	b.halt = state
	return b
}

// On opens a rule for (state, read). The rule is recorded by Go.
func (b *Builder) On(state domain.ControlState, read domain.Symbol) *RuleBuilder {
	return &RuleBuilder{
		builder: b,
		key:     domain.Key{State: state, Symbol: read},
		write:   domain.Keep(),
		move:    domain.Stay,
	}
}

// Rules appends already constructed rules.
func (b *Builder) Rules(rules ...domain.Rule) *Builder {
	b.rules = append(b.rules, rules...)
	return b
}

// Build compiles the table and returns the definition.
func (b *Builder) Build() (*domain.Definition, error) {
	table, err := domain.NewTable(b.halt, b.rules...)
	if err != nil {
		return nil, fmt.Errorf("failed to build machine %q: %w", b.def.Name, err)
	}
	def := b.def
	def.Table = table
	return &def, nil
}

// MustBuild is Build for static definitions known to be valid.
func (b *Builder) MustBuild() *domain.Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
