// Package machines ships the built-in machine library.
package machines

import (
	"sort"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/dsl"
)

// Incrementer adds one to a binary number. The head scans to the blank
// after the number and walks back propagating the carry.
func Incrementer() *domain.Definition {
	return dsl.New("incrementer").
		Describe("Increments a binary number by one.").
		Start("s0").
		Halt("s2").
		On("s0", domain.Zero).Right().Go("s0").
		On("s0", domain.One).Right().Go("s0").
		On("s0", domain.Blank).Left().Go("s1").
		On("s1", domain.Zero).Write(domain.One).Go("s2").
		On("s1", domain.One).Write(domain.Zero).Left().Go("s3").
		On("s3", domain.Zero).Go("s1").
		On("s3", domain.One).Go("s1").
		On("s3", domain.Blank).Write(domain.One).Left().Go("s2").
		MustBuild()
}

// Decrementer subtracts one from a binary number. Zero wraps around to all
// ones of the same width.
func Decrementer() *domain.Definition {
	return dsl.New("decrementer").
		Describe("Decrements a binary number by one (zero wraps to all ones).").
		Start("s0").
		Halt("s2").
		On("s0", domain.Zero).Right().Go("s0").
		On("s0", domain.One).Right().Go("s0").
		On("s0", domain.Blank).Left().Go("s1").
		On("s1", domain.Zero).Write(domain.One).Left().Go("s1").
		On("s1", domain.One).Write(domain.Zero).Go("s2").
		On("s1", domain.Blank).Go("s2").
		MustBuild()
}

// Complement flips every bit and halts on the first blank.
func Complement() *domain.Definition {
	return dsl.New("complement").
		Describe("Flips every bit of the input.").
		Start("s0").
		Halt("s1").
		On("s0", domain.Zero).Write(domain.One).Right().Go("s0").
		On("s0", domain.One).Write(domain.Zero).Right().Go("s0").
		On("s0", domain.Blank).Go("s1").
		MustBuild()
}

// Builtin returns every built-in machine, sorted by name.
func Builtin() []*domain.Definition {
	defs := []*domain.Definition{Incrementer(), Decrementer(), Complement()}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Lookup returns the built-in machine with the given name.
func Lookup(name string) (*domain.Definition, bool) {
	for _, def := range Builtin() {
		if def.Name == name {
			return def, true
		}
	}
	return nil, false
}
