/*
Package dsl provides a fluent builder for Turing machine definitions.

It is the programmatic alternative to definition files: tables are written
in Go, checked at construction and handed to turing.New.

Example usage:

	def, err := dsl.New("incrementer").
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
		Build()

Rules default to keeping the cell and staying in place. Duplicate
(state, symbol) pairs surface from Build as domain.ErrDuplicateTransitionKey.
*/
package dsl
