package http

import (
	"time"

	"github.com/aretw0/turing/pkg/domain"
)

// SessionView is the wire shape of a session.
type SessionView struct {
	ID         string              `json:"id"`
	Machine    string              `json:"machine"`
	Tape       string              `json:"tape"`
	Head       int                 `json:"head"`
	State      domain.ControlState `json:"state"`
	StepCount  int                 `json:"step_count"`
	Outcome    domain.Outcome      `json:"outcome,omitempty"`
	Terminal   bool                `json:"terminal"`
	HistoryLen int                 `json:"history_len"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// MachineView is the wire shape of a definition.
type MachineView struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Start       domain.ControlState `json:"start"`
	Halt        domain.ControlState `json:"halt"`
	Transitions []domain.Rule       `json:"transitions,omitempty"`
}

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	ID      string `json:"id,omitempty"`
	Machine string `json:"machine"`
	Input   string `json:"input"`
}

// RunRequest is the optional body of POST /sessions/{id}/run.
type RunRequest struct {
	Limit int `json:"limit"`
}

func sessionView(s *domain.Session, halt domain.ControlState) SessionView {
	return SessionView{
		ID:         s.ID,
		Machine:    s.Machine,
		Tape:       s.State.Tape.String(),
		Head:       s.State.Head,
		State:      s.State.State,
		StepCount:  s.State.StepCount,
		Outcome:    s.Outcome,
		Terminal:   s.Terminal(halt),
		HistoryLen: len(s.History),
		UpdatedAt:  s.UpdatedAt,
	}
}

func machineView(def *domain.Definition, withRules bool) MachineView {
	v := MachineView{
		Name:        def.Name,
		Description: def.Description,
		Start:       def.Start,
		Halt:        def.Halt(),
	}
	if withRules {
		v.Transitions = def.Table.Rules()
	}
	return v
}
