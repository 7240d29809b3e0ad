package motion_test

import (
	"math"
	"testing"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/motion"
	"github.com/stretchr/testify/assert"
)

func TestComposeGoal(t *testing.T) {
	tests := []struct {
		name       string
		from       domain.Pose
		dx, dy, dt float64
		want       domain.Pose
	}{
		{"forward from origin", domain.Pose{}, 0.5, 0, 0, domain.Pose{X: 0.5}},
		{"forward while facing left", domain.Pose{X: 1, Y: 1, Yaw: math.Pi / 2}, 0.5, 0, 0, domain.Pose{X: 1, Y: 1.5, Yaw: math.Pi / 2}},
		{"sidestep", domain.Pose{Yaw: math.Pi}, 0, 1, 0, domain.Pose{X: 0, Y: -1, Yaw: math.Pi}},
		{"turn in place", domain.Pose{Yaw: math.Pi / 2}, 0, 0, 90, domain.Pose{Yaw: math.Pi}},
		{"turn wraps", domain.Pose{Yaw: 3 * math.Pi / 4}, 0, 0, 90, domain.Pose{Yaw: -3 * math.Pi / 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := motion.ComposeGoal(tt.from, domain.FrameOdom, tt.dx, tt.dy, tt.dt)
			assert.Equal(t, domain.FrameOdom, goal.Frame)
			assert.Equal(t, tt.from, goal.From)
			assert.InDelta(t, tt.want.X, goal.Goal.X, 1e-9)
			assert.InDelta(t, tt.want.Y, goal.Goal.Y, 1e-9)
			assert.InDelta(t, tt.want.Yaw, goal.Goal.Yaw, 1e-9)
		})
	}
}
