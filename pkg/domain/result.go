package domain

// Outcome classifies the result of applying one step.
type Outcome string

const (
	// OutcomeNone means no step has been attempted since the last reset.
	OutcomeNone Outcome = ""
	// Advanced means a transition was applied.
	Advanced Outcome = "advanced"
	// Halted means the machine is in its halt state. Terminal, accepting.
	Halted Outcome = "halted"
	// Rejected means no transition exists for the current (state, symbol).
	// Terminal, non-accepting.
	Rejected Outcome = "rejected"
)

// Terminal reports whether the outcome ends execution.
func (o Outcome) Terminal() bool {
	return o == Halted || o == Rejected
}

// StepResult is what the stepper returns.
// Next and Previous are only set when Outcome is Advanced; Previous is the
// pre-step configuration and is what callers append to their history.
type StepResult struct {
	Outcome  Outcome
	Next     *MachineState
	Previous *MachineState
}
