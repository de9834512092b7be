package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateTransitionKey is returned when a table defines the same
// (state, symbol) pair twice. The table is unusable.
var ErrDuplicateTransitionKey = errors.New("duplicate transition key")

// ErrHaltTransition is returned when a table has rules leaving the halt state.
var ErrHaltTransition = errors.New("transition defined for halt state")

// ErrInvalidSymbol is returned for characters outside the tape alphabet.
var ErrInvalidSymbol = errors.New("invalid symbol")

// ErrInvalidMove is returned for unknown head movements.
var ErrInvalidMove = errors.New("invalid move")

// ErrUnknownState is returned when a definition references a missing or empty state.
var ErrUnknownState = errors.New("unknown state")

// ErrMachineNotFound is returned when a definition name cannot be resolved.
var ErrMachineNotFound = errors.New("machine not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// DuplicateKeyError carries the offending key. It matches ErrDuplicateTransitionKey.
type DuplicateKeyError struct {
	Key Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateTransitionKey, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateTransitionKey
}
