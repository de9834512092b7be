/*
Package domain contains the core models of the Turing machine engine.

It defines the tape alphabet, the tape itself, transition tables and the
machine configuration. The package is kept pure and free of I/O, following
the hexagonal layout of the rest of the module.

# Key Entities

  - Symbol: one cell value, '0', '1' or blank ('_').
  - Tape: a double-ended buffer that grows by one blank when the head leaves it.
  - Table: an immutable (state, symbol) -> Transition map, validated at construction.
  - MachineState: tape, head, control state and step count.
  - StepResult: Advanced, Halted or Rejected, as produced by the stepper.
  - Session: a persisted MachineState plus history, used by the server adapters.
*/
package domain
