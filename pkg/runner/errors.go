package runner

import "errors"

var (
	// ErrRunning is returned by commands that require the controller to be idle.
	ErrRunning = errors.New("controller is running")
	// ErrTerminal is returned when auto-run is requested on a halted or rejected machine.
	ErrTerminal = errors.New("machine is in a terminal state")
	// ErrInvalidSpeed is returned for non-positive tick delays.
	ErrInvalidSpeed = errors.New("speed must be positive")
	// ErrNoHistory is returned by Undo when there is nothing to restore.
	ErrNoHistory = errors.New("no history to undo")
	// ErrClosed is returned by every command after Close.
	ErrClosed = errors.New("controller is closed")
)
