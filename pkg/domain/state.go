package domain

// MachineState is the full configuration of a running machine.
type MachineState struct {
	Tape      *Tape        `json:"tape"`
	Head      int          `json:"head"`
	State     ControlState `json:"state"`
	StepCount int          `json:"step_count"`
}

// NewMachineState creates the configuration at reset: the given cells
// followed by one blank, head on the first cell.
func NewMachineState(cells []Symbol, start ControlState) *MachineState {
	withBlank := make([]Symbol, 0, len(cells)+1)
	withBlank = append(withBlank, cells...)
	withBlank = append(withBlank, Blank)
	return &MachineState{
		Tape:  NewTape(withBlank...),
		Head:  0,
		State: start,
	}
}

// Read returns the symbol under the head.
func (s *MachineState) Read() Symbol {
	return s.Tape.At(s.Head)
}

// Clone returns a deep copy, safe to keep while the original advances.
func (s *MachineState) Clone() *MachineState {
	c := *s
	c.Tape = s.Tape.Clone()
	return &c
}

// Equal reports whether two configurations are identical.
func (s *MachineState) Equal(o *MachineState) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Head == o.Head &&
		s.State == o.State &&
		s.StepCount == o.StepCount &&
		s.Tape.Equal(o.Tape)
}
