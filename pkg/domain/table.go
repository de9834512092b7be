package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Table is an immutable transition table. Construct it with NewTable.
type Table struct {
	halt    ControlState
	entries map[Key]Transition
}

// NewTable validates rules and builds the lookup map.
// A repeated (state, symbol) pair fails with ErrDuplicateTransitionKey;
// rules leaving the halt state fail with ErrHaltTransition.
func NewTable(halt ControlState, rules ...Rule) (*Table, error) {
	if halt == "" {
		return nil, fmt.Errorf("%w: halt state is empty", ErrUnknownState)
	}
	entries := make(map[Key]Transition, len(rules))
	for _, r := range rules {
		if r.State == "" || r.Next == "" {
			return nil, fmt.Errorf("%w: rule %s has an empty state", ErrUnknownState, r.Key)
		}
		if !r.Symbol.Valid() {
			return nil, fmt.Errorf("%w: rule %s reads %q", ErrInvalidSymbol, r.Key, byte(r.Symbol))
		}
		if sym, ok := r.Write.Symbol(); ok && !sym.Valid() {
			return nil, fmt.Errorf("%w: rule %s writes %q", ErrInvalidSymbol, r.Key, byte(sym))
		}
		if r.State == halt {
			return nil, fmt.Errorf("%w: %s", ErrHaltTransition, r.Key)
		}
		if _, dup := entries[r.Key]; dup {
			return nil, &DuplicateKeyError{Key: r.Key}
		}
		entries[r.Key] = r.Transition
	}
	return &Table{halt: halt, entries: entries}, nil
}

// MustTable is NewTable for static tables known to be valid.
func MustTable(halt ControlState, rules ...Rule) *Table {
	t, err := NewTable(halt, rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Halt returns the designated halt state.
func (t *Table) Halt() ControlState {
	return t.halt
}

// Lookup returns the transition for (state, symbol).
func (t *Table) Lookup(state ControlState, symbol Symbol) (Transition, bool) {
	tr, ok := t.entries[Key{State: state, Symbol: symbol}]
	return tr, ok
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.entries)
}

// Rules returns every rule ordered by state, then by alphabet position.
func (t *Table) Rules() []Rule {
	rules := make([]Rule, 0, len(t.entries))
	for k, tr := range t.entries {
		rules = append(rules, Rule{Key: k, Transition: tr})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].State != rules[j].State {
			return rules[i].State < rules[j].State
		}
		return symbolOrder(rules[i].Symbol) < symbolOrder(rules[j].Symbol)
	})
	return rules
}

// States returns the sorted set of states that appear in the table,
// including the halt state.
func (t *Table) States() []ControlState {
	seen := map[ControlState]bool{t.halt: true}
	for k, tr := range t.entries {
		seen[k.State] = true
		seen[tr.Next] = true
	}
	states := make([]ControlState, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// HasRulesFrom reports whether any rule starts in state.
func (t *Table) HasRulesFrom(state ControlState) bool {
	for _, sym := range Alphabet {
		if _, ok := t.entries[Key{State: state, Symbol: sym}]; ok {
			return true
		}
	}
	return false
}

func symbolOrder(s Symbol) int {
	for i, a := range Alphabet {
		if a == s {
			return i
		}
	}
	return len(Alphabet)
}

type ruleJSON struct {
	State string `json:"state"`
	Read  string `json:"read"`
	Next  string `json:"next"`
	Write string `json:"write"`
	Move  string `json:"move"`
}

// MarshalJSON flattens a rule into the same shape definition files use.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(ruleJSON{
		State: string(r.State),
		Read:  r.Symbol.String(),
		Next:  string(r.Next),
		Write: r.Write.String(),
		Move:  r.Move.String(),
	})
}

// UnmarshalJSON reads the flattened rule shape.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	read, err := ParseSymbol(raw.Read)
	if err != nil {
		return err
	}
	write, err := ParseWriteAction(raw.Write)
	if err != nil {
		return err
	}
	move, err := ParseMove(raw.Move)
	if err != nil {
		return err
	}
	*r = NewRule(ControlState(raw.State), read, ControlState(raw.Next), write, move)
	return nil
}

// ParseWriteAction reads "keep" (or an empty string) as Keep, anything
// else as a symbol to write.
func ParseWriteAction(raw string) (WriteAction, error) {
	switch raw {
	case "", "keep", "-", "n":
		return Keep(), nil
	}
	sym, err := ParseSymbol(raw)
	if err != nil {
		return WriteAction{}, err
	}
	return Write(sym), nil
}
