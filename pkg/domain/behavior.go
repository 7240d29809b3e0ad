package domain

import (
	"fmt"
	"strings"
)

// Behavior selects what the engine does while the robot is powered.
type Behavior string

const (
	BehaviorMove    Behavior = "move"
	BehaviorCapture Behavior = "capture"
	BehaviorNoOp    Behavior = "noop"
)

// ParseBehavior resolves a behavior name.
func ParseBehavior(name string) (Behavior, error) {
	switch b := Behavior(strings.ToLower(strings.TrimSpace(name))); b {
	case BehaviorMove, BehaviorCapture, BehaviorNoOp:
		return b, nil
	case "", "else", "none":
		return BehaviorNoOp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBehavior, name)
	}
}

// StepKind identifies a move plan step.
type StepKind string

const (
	StepStand  StepKind = "stand"
	StepTwist  StepKind = "twist"
	StepHeight StepKind = "height"
	StepMove   StepKind = "move"
)

// MoveStep is one posture or locomotion step of a move plan.
// Angles are in degrees, distances in meters.
type MoveStep struct {
	Kind   StepKind `json:"kind"`
	DX     float64  `json:"dx,omitempty"`
	DY     float64  `json:"dy,omitempty"`
	DYaw   float64  `json:"dyaw,omitempty"`
	Roll   float64  `json:"roll,omitempty"`
	Pitch  float64  `json:"pitch,omitempty"`
	Height float64  `json:"height,omitempty"`
	Stairs bool     `json:"stairs,omitempty"`
	Frame  Frame    `json:"frame,omitempty"`
}

// Validate checks that the step kind is known.
func (s MoveStep) Validate() error {
	switch s.Kind {
	case StepStand, StepTwist, StepHeight, StepMove:
		return nil
	default:
		return fmt.Errorf("invalid move step kind %q", s.Kind)
	}
}

// DefaultMovePlan is the demonstration routine: twist twice, raise the body,
// walk half a meter forward and back.
func DefaultMovePlan() []MoveStep {
	return []MoveStep{
		{Kind: StepTwist, DYaw: 25},
		{Kind: StepTwist, DYaw: 25},
		{Kind: StepHeight, Height: 0.1},
		{Kind: StepMove, DX: 0.5},
		{Kind: StepMove, DX: -0.5},
	}
}
