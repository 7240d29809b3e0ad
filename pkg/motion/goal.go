package motion

import (
	"math"

	"github.com/aretw0/strider/pkg/domain"
	"gonum.org/v1/gonum/spatial/r2"
)

// ComposeGoal applies a body-relative displacement to a pose. dx and dy are meters
// along the body's forward and left axes; dyawDeg is a heading change in degrees.
func ComposeGoal(from domain.Pose, frame domain.Frame, dx, dy, dyawDeg float64) domain.GoalTransform {
	offset := r2.Rotate(r2.Vec{X: dx, Y: dy}, from.Yaw, r2.Vec{})
	xy := r2.Add(r2.Vec{X: from.X, Y: from.Y}, offset)
	return domain.GoalTransform{
		Frame: frame,
		From:  from,
		Goal: domain.Pose{
			X:   xy.X,
			Y:   xy.Y,
			Yaw: wrapAngle(from.Yaw + dyawDeg*math.Pi/180),
		},
	}
}

// wrapAngle normalizes an angle to (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
