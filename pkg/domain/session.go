package domain

import "time"

// Session is a persisted machine run addressed by ID.
type Session struct {
	ID        string          `json:"id"`
	Machine   string          `json:"machine"`
	State     *MachineState   `json:"state"`
	History   []*MachineState `json:"history,omitempty"`
	Outcome   Outcome         `json:"outcome,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
	// Sealed holds an encrypted copy of the session written by an
	// encrypting store. State and History are empty when it is set.
	Sealed []byte `json:"sealed,omitempty"`
}

// Terminal reports whether the session can make no further progress.
func (s *Session) Terminal(halt ControlState) bool {
	return s.State.State == halt || s.Outcome == Rejected
}

// Snapshot returns a deep copy, so stores never share tapes with callers.
func (s *Session) Snapshot() *Session {
	c := *s
	if s.State != nil {
		c.State = s.State.Clone()
	}
	if s.History != nil {
		c.History = make([]*MachineState, len(s.History))
		for i, h := range s.History {
			c.History[i] = h.Clone()
		}
	}
	if s.Sealed != nil {
		c.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &c
}
