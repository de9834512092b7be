package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep   EventType = "step"
	EventHalt   EventType = "halt"
	EventReject EventType = "reject"
)

// StepEvent describes one attempt to advance a machine.
type StepEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Type      EventType    `json:"type"`
	Machine   string       `json:"machine"`
	From      ControlState `json:"from"`
	To        ControlState `json:"to,omitempty"`
	Read      Symbol       `json:"read"`
	Head      int          `json:"head"`
	TapeLen   int          `json:"tape_len"`
	StepCount int          `json:"step_count"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the stepping goroutine. OnHalt and OnReject
// fire once per run: on entering the halt state and on the missing rule.
type LifecycleHooks struct {
	OnStep   func(context.Context, *StepEvent)
	OnHalt   func(context.Context, *StepEvent)
	OnReject func(context.Context, *StepEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStep:   chain(h.OnStep, other.OnStep),
		OnHalt:   chain(h.OnHalt, other.OnHalt),
		OnReject: chain(h.OnReject, other.OnReject),
	}
}

func chain(a, b func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *StepEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
