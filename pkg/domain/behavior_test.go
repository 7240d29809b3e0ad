package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBehavior(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Behavior
	}{
		{"move", domain.BehaviorMove},
		{"CAPTURE", domain.BehaviorCapture},
		{"noop", domain.BehaviorNoOp},
		{"", domain.BehaviorNoOp},
		{"else", domain.BehaviorNoOp},
	}
	for _, tt := range tests {
		got, err := domain.ParseBehavior(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := domain.ParseBehavior("dance")
	assert.ErrorIs(t, err, domain.ErrUnknownBehavior)
}

func TestMotionOutcome_Err(t *testing.T) {
	assert.NoError(t, domain.Reached.Err())
	assert.ErrorIs(t, domain.NotReached.Err(), domain.ErrMotionFailed)
	assert.ErrorIs(t, domain.Timeout.Err(), domain.ErrMotionTimeout)
	assert.Equal(t, "timeout", domain.Timeout.String())
}

func TestDefaultMovePlan_Valid(t *testing.T) {
	for _, step := range domain.DefaultMovePlan() {
		assert.NoError(t, step.Validate())
	}
	assert.Error(t, domain.MoveStep{Kind: "jump"}.Validate())
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnPhase: func(context.Context, *domain.PhaseEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnPhase:  func(context.Context, *domain.PhaseEvent) { calls = append(calls, "b") },
		OnMotion: func(context.Context, *domain.MotionEvent) { calls = append(calls, "motion") },
	}

	merged := a.Merge(b)
	merged.OnPhase(context.Background(), &domain.PhaseEvent{Phase: domain.PhaseInit})
	merged.OnMotion(context.Background(), &domain.MotionEvent{})

	assert.Equal(t, []string{"a", "b", "motion"}, calls)
	assert.Nil(t, merged.OnCapture)
}
