package turing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
)

// ErrStepLimit is returned by Run when the machine is still going after the limit.
var ErrStepLimit = errors.New("step limit reached")

// Engine is the high-level entry point of the library.
// It binds a machine definition to the stepper, a logger and lifecycle hooks.
// An Engine holds no run state and is safe for concurrent use.
type Engine struct {
	def    *domain.Definition
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New validates def and initializes an Engine.
// Definitions whose table failed to build never reach this point, so a
// duplicate key is caught before any engine exists.
func New(def *domain.Definition, opts ...Option) (*Engine, error) {
	if def == nil || def.Table == nil {
		return nil, fmt.Errorf("definition is required")
	}
	if def.Start == "" {
		return nil, fmt.Errorf("%w: start state is empty", domain.ErrUnknownState)
	}

	eng := &Engine{def: def, now: time.Now}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if def.Name != "" {
		eng.logger = eng.logger.With("machine", def.Name)
	}

	return eng, nil
}

// Definition returns the machine this engine runs.
func (e *Engine) Definition() *domain.Definition {
	return e.def
}

// Logger returns the engine logger, enriched with the machine name.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// NewState builds the reset configuration from free-form text.
// Characters other than '0' and '1' are dropped silently.
func (e *Engine) NewState(text string) *domain.MachineState {
	return domain.NewMachineState(FilterInput(text), e.def.Start)
}

// IsTerminal reports whether s is in the halt state or last saw outcome Rejected.
func (e *Engine) IsTerminal(s *domain.MachineState, last domain.Outcome) bool {
	return s.State == e.def.Halt() || last == domain.Rejected
}

// Step applies one transition to state and fires lifecycle hooks.
// OnHalt fires on the step that enters the halt state; probing a halted
// configuration again is silent.
func (e *Engine) Step(ctx context.Context, state *domain.MachineState) domain.StepResult {
	res := runtime.Step(e.def.Table, state)

	event := &domain.StepEvent{
		Timestamp: e.now(),
		Machine:   e.def.Name,
		From:      state.State,
		Read:      state.Read(),
		Head:      state.Head,
		TapeLen:   state.Tape.Len(),
		StepCount: state.StepCount,
	}

	switch res.Outcome {
	case domain.Advanced:
		event.Type = domain.EventStep
		event.To = res.Next.State
		event.Head = res.Next.Head
		event.TapeLen = res.Next.Tape.Len()
		event.StepCount = res.Next.StepCount
		e.logger.Debug("step", "from", state.State, "read", event.Read, "to", event.To, "step", event.StepCount)
		if e.hooks.OnStep != nil {
			e.hooks.OnStep(ctx, event)
		}
		if res.Next.State == e.def.Halt() {
			halt := *event
			halt.Type = domain.EventHalt
			halt.From = res.Next.State
			halt.Read = res.Next.Read()
			e.logger.Debug("halted", "state", halt.From, "steps", halt.StepCount)
			if e.hooks.OnHalt != nil {
				e.hooks.OnHalt(ctx, &halt)
			}
		}
	case domain.Rejected:
		event.Type = domain.EventReject
		e.logger.Info("rejected", "state", state.State, "read", event.Read, "head", state.Head)
		if e.hooks.OnReject != nil {
			e.hooks.OnReject(ctx, event)
		}
	}

	return res
}

// RunResult is the outcome of a bounded run.
type RunResult struct {
	State   *domain.MachineState
	History []*domain.MachineState
	Outcome domain.Outcome
}

// Run steps from state until the machine halts, rejects, ctx is cancelled or
// limit steps were applied. A limit <= 0 means no limit.
// On ErrStepLimit or a context error the partial result is still returned.
func (e *Engine) Run(ctx context.Context, state *domain.MachineState, limit int) (RunResult, error) {
	result := RunResult{State: state}
	for applied := 0; limit <= 0 || applied < limit; applied++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res := e.Step(ctx, result.State)
		if res.Outcome != domain.Advanced {
			result.Outcome = res.Outcome
			return result, nil
		}
		result.History = append(result.History, res.Previous)
		result.State = res.Next
		result.Outcome = domain.Advanced
	}

	// The limit may land exactly on the halt state.
	if result.State.State == e.def.Halt() {
		result.Outcome = domain.Halted
		return result, nil
	}
	return result, fmt.Errorf("%w: %d steps", ErrStepLimit, limit)
}

// Inspect returns the transition rules for visualization.
func (e *Engine) Inspect() []domain.Rule {
	return e.def.Table.Rules()
}
