package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
)

// Controller owns the run state of one machine and its auto-run scheduler.
// It is safe for concurrent use.
type Controller struct {
	engine   *turing.Engine
	logger   *slog.Logger
	observer Observer

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   *domain.MachineState
	history []*domain.MachineState
	last    domain.Outcome
	speed   time.Duration
	running bool
	closed  bool

	// epoch identifies the current scheduling generation.
	epoch uint64
	timer *time.Timer
	// idle is closed whenever the controller is not running.
	idle chan struct{}
}

// NewController creates an idle controller on a blank tape.
func NewController(engine *turing.Engine, opts ...Option) *Controller {
	c := &Controller{
		engine: engine,
		speed:  DefaultSpeed,
		idle:   make(chan struct{}),
	}
	close(c.idle)
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.state = engine.NewState("")
	return c
}

// Reset stops auto-run and loads a fresh configuration built from text.
// Characters other than '0' and '1' are dropped.
func (c *Controller) Reset(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.stopLocked()
	c.state = c.engine.NewState(text)
	c.history = nil
	c.last = domain.OutcomeNone
	c.logger.Debug("reset", "tape", c.state.Tape.String())
	c.notifyLocked()
	return nil
}

// SingleStep applies one transition. It is refused while auto-run is active.
// Halted and Rejected leave the configuration untouched.
func (c *Controller) SingleStep() (domain.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.OutcomeNone, ErrClosed
	}
	if c.running {
		return domain.OutcomeNone, ErrRunning
	}

	outcome := c.stepLocked()
	c.notifyLocked()
	return outcome, nil
}

// ToggleRun starts auto-run when idle and stops it when running.
func (c *Controller) ToggleRun() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	if c.running {
		c.stopLocked()
		c.logger.Debug("auto-run stopped", "steps", c.state.StepCount)
	} else {
		if c.terminalLocked() {
			return ErrTerminal
		}
		c.running = true
		c.idle = make(chan struct{})
		c.scheduleLocked()
		c.logger.Debug("auto-run started", "speed", c.speed)
	}
	c.notifyLocked()
	return nil
}

// SetSpeed changes the delay between auto-run steps.
// A pending tick is re-armed with the new delay.
func (c *Controller) SetSpeed(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidSpeed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	c.speed = d
	if c.running {
		c.disarmLocked()
		c.scheduleLocked()
	}
	c.notifyLocked()
	return nil
}

// Undo restores the configuration before the last committed step.
func (c *Controller) Undo() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.running {
		return ErrRunning
	}
	if len(c.history) == 0 {
		return ErrNoHistory
	}

	last := len(c.history) - 1
	c.state = c.history[last]
	c.history[last] = nil
	c.history = c.history[:last]
	c.last = domain.OutcomeNone
	c.notifyLocked()
	return nil
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// State returns a copy of the current configuration.
func (c *Controller) State() *domain.MachineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// History returns copies of the configurations before each committed step,
// oldest first.
func (c *Controller) History() []*domain.MachineState {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*domain.MachineState, len(c.history))
	for i, s := range c.history {
		out[i] = s.Clone()
	}
	return out
}

// Wait blocks until the controller is idle or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops auto-run and cancels any pending tick.
// Later commands return ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.stopLocked()
	c.closed = true
	c.cancel()
	return nil
}

func (c *Controller) tick(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A tick armed in an earlier generation must never step.
	if c.closed || !c.running || epoch != c.epoch {
		return
	}
	c.timer = nil

	outcome := c.stepLocked()
	if outcome == domain.Advanced && !c.terminalLocked() {
		c.scheduleLocked()
	} else {
		c.stopLocked()
		c.logger.Info("auto-run finished", "outcome", outcome, "state", c.state.State, "steps", c.state.StepCount)
	}
	c.notifyLocked()
}

func (c *Controller) stepLocked() domain.Outcome {
	// A rejected configuration stays rejected until reset or undo.
	if c.last == domain.Rejected {
		return domain.Rejected
	}
	res := c.engine.Step(c.ctx, c.state)
	c.last = res.Outcome
	if res.Outcome == domain.Advanced {
		c.history = append(c.history, res.Previous)
		c.state = res.Next
	}
	return res.Outcome
}

func (c *Controller) scheduleLocked() {
	epoch := c.epoch
	c.timer = time.AfterFunc(c.speed, func() { c.tick(epoch) })
}

// disarmLocked cancels the pending tick and invalidates it if it already fired.
func (c *Controller) disarmLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.epoch++
}

func (c *Controller) stopLocked() {
	c.disarmLocked()
	if c.running {
		c.running = false
		close(c.idle)
	}
}

func (c *Controller) terminalLocked() bool {
	return c.engine.IsTerminal(c.state, c.last)
}

func (c *Controller) viewLocked() View {
	return View{
		Tape:       c.state.Tape.Clone(),
		Head:       c.state.Head,
		State:      c.state.State,
		StepCount:  c.state.StepCount,
		Terminal:   c.terminalLocked(),
		Running:    c.running,
		Outcome:    c.last,
		HistoryLen: len(c.history),
		Speed:      c.speed,
	}
}

func (c *Controller) notifyLocked() {
	if c.observer != nil {
		c.observer(c.viewLocked())
	}
}
