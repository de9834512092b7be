package runtime

import (
	"github.com/aretw0/turing/pkg/domain"
)

// Step applies exactly one transition to current, or reports why it could not.
// current is never modified: on Advanced the result carries a fresh Next and
// current itself as Previous, so the same input always yields the same output.
func Step(table *domain.Table, current *domain.MachineState) domain.StepResult {
	if current.State == table.Halt() {
		return domain.StepResult{Outcome: domain.Halted}
	}

	tr, ok := table.Lookup(current.State, current.Read())
	if !ok {
		return domain.StepResult{Outcome: domain.Rejected}
	}

	next := current.Clone()

	if sym, write := tr.Write.Symbol(); write {
		next.Tape.Set(next.Head, sym)
	}

	switch tr.Move {
	case domain.Right:
		next.Head++
		if next.Head == next.Tape.Len() {
			next.Tape.PushBack()
		}
	case domain.Left:
		next.Head--
		if next.Head < 0 {
			next.Tape.PushFront()
			next.Head = 0
		}
	}

	next.State = tr.Next
	next.StepCount++

	return domain.StepResult{
		Outcome:  domain.Advanced,
		Next:     next,
		Previous: current,
	}
}
