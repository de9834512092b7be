package domain

import "fmt"

// Symbol is a single tape cell value drawn from the fixed alphabet {0, 1, blank}.
type Symbol byte

const (
	Zero  Symbol = '0'
	One   Symbol = '1'
	Blank Symbol = '_'
)

// BlankGlyph is how a blank cell is shown to humans.
const BlankGlyph = "□"

// Alphabet lists every symbol in lookup order.
var Alphabet = []Symbol{Zero, One, Blank}

// Valid reports whether s belongs to the alphabet.
func (s Symbol) Valid() bool {
	return s == Zero || s == One || s == Blank
}

// String returns the text form used in tapes and definition files.
func (s Symbol) String() string {
	return string(rune(s))
}

// Display returns the glyph used when rendering the tape.
func (s Symbol) Display() string {
	if s == Blank {
		return BlankGlyph
	}
	return s.String()
}

// ParseSymbol accepts the text forms found in definition files.
// A space and the display glyph are both read as blank.
func ParseSymbol(raw string) (Symbol, error) {
	switch raw {
	case "0":
		return Zero, nil
	case "1":
		return One, nil
	case "_", " ", "", BlankGlyph, "blank", "B":
		return Blank, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
}

// MarshalText implements encoding.TextMarshaler.
func (s Symbol) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSymbol, byte(s))
	}
	return []byte{byte(s)}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbol) UnmarshalText(text []byte) error {
	sym, err := ParseSymbol(string(text))
	if err != nil {
		return err
	}
	*s = sym
	return nil
}
