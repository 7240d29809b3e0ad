package domain

import (
	"context"
	"time"
)

// Phase is a state of the orchestrated session.
type Phase string

const (
	PhaseInit          Phase = "init"
	PhaseLeaseHeld     Phase = "lease_held"
	PhasePoweredOn     Phase = "powered_on"
	PhaseExecuting     Phase = "executing"
	PhasePoweredOff    Phase = "powered_off"
	PhaseLeaseReleased Phase = "lease_released"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	LeaseID   string    `json:"lease_id,omitempty"`
}

// PhaseEvent is emitted on every orchestrator state change.
type PhaseEvent struct {
	EventBase
	Phase Phase `json:"phase"`
}

// KeepAliveEvent is emitted after each liveness ping.
type KeepAliveEvent struct {
	EventBase
	Err      error `json:"-"`
	Failures int   `json:"failures"`
}

// MotionEvent is emitted when a move command reaches a terminal state.
type MotionEvent struct {
	EventBase
	Goal     GoalTransform `json:"goal"`
	Outcome  MotionOutcome `json:"outcome"`
	Polls    int           `json:"polls"`
	Duration time.Duration `json:"duration"`
}

// CaptureEvent is emitted after each capture attempt.
type CaptureEvent struct {
	EventBase
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Degraded  bool   `json:"degraded,omitempty"`
	Persisted bool   `json:"persisted"`
	Err       error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability. Every field is optional.
type LifecycleHooks struct {
	OnPhase     func(context.Context, *PhaseEvent)
	OnKeepAlive func(context.Context, *KeepAliveEvent)
	OnLeaseLost func(context.Context, *KeepAliveEvent)
	OnMotion    func(context.Context, *MotionEvent)
	OnCapture   func(context.Context, *CaptureEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPhase:     chain(h.OnPhase, other.OnPhase),
		OnKeepAlive: chain(h.OnKeepAlive, other.OnKeepAlive),
		OnLeaseLost: chain(h.OnLeaseLost, other.OnLeaseLost),
		OnMotion:    chain(h.OnMotion, other.OnMotion),
		OnCapture:   chain(h.OnCapture, other.OnCapture),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
