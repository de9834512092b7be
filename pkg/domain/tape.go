package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tape is a double-ended growable sequence of symbols.
// Cells left of the logical origin live reversed in left, the rest in right,
// so prepending never shifts existing cells.
type Tape struct {
	left  []Symbol
	right []Symbol
}

// NewTape builds a tape from cells. An empty input yields a single blank
// because a tape is never empty.
func NewTape(cells ...Symbol) *Tape {
	right := make([]Symbol, len(cells), len(cells)+1)
	copy(right, cells)
	if len(right) == 0 {
		right = append(right, Blank)
	}
	return &Tape{right: right}
}

// ParseTape reads the text form produced by String.
func ParseTape(text string) (*Tape, error) {
	cells := make([]Symbol, 0, len(text))
	for _, r := range text {
		sym, err := ParseSymbol(string(r))
		if err != nil {
			return nil, err
		}
		cells = append(cells, sym)
	}
	return NewTape(cells...), nil
}

// Len returns the number of materialized cells.
func (t *Tape) Len() int {
	return len(t.left) + len(t.right)
}

// At returns the symbol at index i (0 is the leftmost materialized cell).
func (t *Tape) At(i int) Symbol {
	if i < len(t.left) {
		return t.left[len(t.left)-1-i]
	}
	return t.right[i-len(t.left)]
}

// Set overwrites the symbol at index i.
func (t *Tape) Set(i int, s Symbol) {
	if i < len(t.left) {
		t.left[len(t.left)-1-i] = s
		return
	}
	t.right[i-len(t.left)] = s
}

// PushFront adds one blank before the first cell.
func (t *Tape) PushFront() {
	t.left = append(t.left, Blank)
}

// PushBack adds one blank after the last cell.
func (t *Tape) PushBack() {
	t.right = append(t.right, Blank)
}

// Cells returns a copy of the tape contents in order.
func (t *Tape) Cells() []Symbol {
	out := make([]Symbol, 0, t.Len())
	for i := len(t.left) - 1; i >= 0; i-- {
		out = append(out, t.left[i])
	}
	return append(out, t.right...)
}

// Clone returns a deep copy.
func (t *Tape) Clone() *Tape {
	c := &Tape{
		left:  make([]Symbol, len(t.left), cap(t.left)),
		right: make([]Symbol, len(t.right), cap(t.right)),
	}
	copy(c.left, t.left)
	copy(c.right, t.right)
	return c
}

// Equal compares contents, ignoring where the origin sits.
func (t *Tape) Equal(o *Tape) bool {
	if t.Len() != o.Len() {
		return false
	}
	for i := 0; i < t.Len(); i++ {
		if t.At(i) != o.At(i) {
			return false
		}
	}
	return true
}

// String returns the text form, with '_' for blanks.
func (t *Tape) String() string {
	var sb strings.Builder
	sb.Grow(t.Len())
	for _, s := range t.Cells() {
		sb.WriteByte(byte(s))
	}
	return sb.String()
}

// Trimmed returns the text form without leading and trailing blanks.
func (t *Tape) Trimmed() string {
	return strings.Trim(t.String(), string(Blank))
}

// MarshalJSON encodes the tape as its text form.
func (t *Tape) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the text form.
func (t *Tape) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("tape: %w", err)
	}
	parsed, err := ParseTape(text)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
