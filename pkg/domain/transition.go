package domain

import "fmt"

// ControlState is an opaque label for the machine's current mode.
type ControlState string

// WriteAction describes what happens to the cell under the head.
// The zero value keeps the cell. Keeping is a flag rather than a reserved
// symbol, so it can never be confused with a real tape value.
type WriteAction struct {
	write  bool
	symbol Symbol
}

// Keep leaves the current cell untouched.
func Keep() WriteAction { return WriteAction{} }

// Write replaces the current cell with s.
func Write(s Symbol) WriteAction { return WriteAction{write: true, symbol: s} }

// Symbol returns the symbol to write and whether a write happens at all.
func (w WriteAction) Symbol() (Symbol, bool) { return w.symbol, w.write }

// IsKeep reports whether the action leaves the cell unchanged.
func (w WriteAction) IsKeep() bool { return !w.write }

func (w WriteAction) String() string {
	if !w.write {
		return "keep"
	}
	return w.symbol.String()
}

// Transition is the right-hand side of a table rule.
type Transition struct {
	Next  ControlState `json:"next" yaml:"next"`
	Write WriteAction  `json:"-" yaml:"-"`
	Move  Move         `json:"move" yaml:"move"`
}

// Key is the (state, symbol) pair a Transition is looked up by.
type Key struct {
	State  ControlState `json:"state"`
	Symbol Symbol       `json:"symbol"`
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %s)", k.State, k.Symbol)
}

// Rule pairs a Key with its Transition. Tables are built from rules.
type Rule struct {
	Key
	Transition
}

// NewRule is shorthand for building a Rule in tests and built-in machines.
func NewRule(state ControlState, read Symbol, next ControlState, write WriteAction, move Move) Rule {
	return Rule{
		Key:        Key{State: state, Symbol: read},
		Transition: Transition{Next: next, Write: write, Move: move},
	}
}
