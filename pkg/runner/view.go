package runner

import (
	"time"

	"github.com/aretw0/turing/pkg/domain"
)

// View is an immutable snapshot of what a Controller exposes to a display.
type View struct {
	Tape       *domain.Tape        `json:"tape"`
	Head       int                 `json:"head"`
	State      domain.ControlState `json:"state"`
	StepCount  int                 `json:"step_count"`
	Terminal   bool                `json:"terminal"`
	Running    bool                `json:"running"`
	Outcome    domain.Outcome      `json:"outcome,omitempty"`
	HistoryLen int                 `json:"history_len"`
	Speed      time.Duration       `json:"speed"`
}

// Observer receives views as the controller changes.
type Observer func(View)

// Result reports how a terminal view ended. Entering the halt state is
// reported as Halted even before the halting step is probed.
func (v View) Result() domain.Outcome {
	if v.Terminal && v.Outcome != domain.Rejected {
		return domain.Halted
	}
	return v.Outcome
}
