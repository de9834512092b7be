package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single field failure in a definition file.
type ValidationError struct {
	Key    string // Field path, e.g. "transitions[2].read"
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
	Err    error  // Underlying sentinel, if any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "definition has %d problems:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  - " + err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors unpacks every field failure carried by err, or nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
