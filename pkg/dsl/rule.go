package dsl

import "github.com/aretw0/turing/pkg/domain"

// RuleBuilder provides a fluent API for configuring one rule.
type RuleBuilder struct {
	builder *Builder
	key     domain.Key
	write   domain.WriteAction
	move    domain.Move
}

// Write sets the symbol written under the head.
func (r *RuleBuilder) Write(s domain.Symbol) *RuleBuilder {
	r.write = domain.Write(s)
	return r
}

// Keep leaves the cell as it is. This is the default.
func (r *RuleBuilder) Keep() *RuleBuilder {
	r.write = domain.Keep()
	return r
}

// Left moves the head one cell left.
func (r *RuleBuilder) Left() *RuleBuilder {
	r.move = domain.Left
	return r
}

// Right moves the head one cell right.
func (r *RuleBuilder) Right() *RuleBuilder {
	r.move = domain.Right
	return r
}

// Stay keeps the head in place. This is the default.
func (r *RuleBuilder) Stay() *RuleBuilder {
	r.move = domain.Stay
	return r
}

// Go sets the next state, records the rule and returns the parent builder.
func (r *RuleBuilder) Go(next domain.ControlState) *Builder {
	r.builder.rules = append(r.builder.rules, domain.Rule{
		Key: r.key,
		Transition: domain.Transition{
			Next:  next,
			Write: r.write,
			Move:  r.move,
		},
	})
	return r.builder
}
