// Package schema reads and writes machine definition files.
//
// A definition file is YAML (or JSON, which is valid YAML):
//
//	name: incrementer
//	description: Increments a binary number by one.
//	start: s0
//	halt: s2
//	transitions:
//	  - {state: s0, read: 0, next: s0, move: R}
//	  - {state: s0, read: _, next: s1, move: L}
//	  - {state: s1, read: 0, next: s2, write: 1, move: S}
//
// The document is decoded into a generic map first and then into File with
// mapstructure, so the same decoder serves frontmatter metadata handed over
// by document stores. Scalars are weakly typed: `read: 0` is the symbol '0'.
// An empty or `keep` write leaves the cell unchanged.
package schema
