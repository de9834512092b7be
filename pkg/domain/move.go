package domain

import (
	"fmt"
	"strings"
)

// Move is the head movement applied after a write.
type Move int

const (
	Stay Move = iota
	Left
	Right
)

func (m Move) String() string {
	switch m {
	case Left:
		return "L"
	case Right:
		return "R"
	default:
		return "S"
	}
}

// ParseMove accepts single letters (L, R, S, N) and the long names.
func ParseMove(raw string) (Move, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "L", "LEFT":
		return Left, nil
	case "R", "RIGHT":
		return Right, nil
	case "S", "N", "STAY", "NONE", "":
		return Stay, nil
	}
	return Stay, fmt.Errorf("%w: %q", ErrInvalidMove, raw)
}

// MarshalText implements encoding.TextMarshaler.
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Move) UnmarshalText(text []byte) error {
	mv, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = mv
	return nil
}
