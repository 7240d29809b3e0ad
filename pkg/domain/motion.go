package domain

import "fmt"

// Frame names a reference frame poses are expressed in.
type Frame string

const (
	FrameOdom   Frame = "odom"
	FrameVision Frame = "vision"
	FrameBody   Frame = "body"
)

// Pose is a planar pose. Yaw is in radians.
type Pose struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
}

// GoalTransform is the target of a relative move, expressed in Frame.
type GoalTransform struct {
	Frame Frame `json:"frame"`
	From  Pose  `json:"from"`
	Goal  Pose  `json:"goal"`
}

// MobilityParams tunes how the robot walks to a goal.
type MobilityParams struct {
	StairsMode bool `json:"stairs_mode"`
}

// Orientation is a body attitude in degrees.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// StandParams configures a stand command. The zero value is a plain stand.
type StandParams struct {
	BodyHeight  float64     `json:"body_height"`
	Orientation Orientation `json:"orientation"`
}

// CommandID identifies an issued command for polling.
type CommandID string

// CommandStatus is the robot's processing state for a command.
type CommandStatus string

const (
	CommandProcessing   CommandStatus = "processing"
	CommandCompleted    CommandStatus = "completed"
	CommandFailed       CommandStatus = "failed"
	CommandOverridden   CommandStatus = "overridden"
	CommandTimedOut     CommandStatus = "timed_out"
	CommandUnknownState CommandStatus = "unknown"
)

// TrajectoryStatus reports progress along a move trajectory.
type TrajectoryStatus string

const (
	TrajectoryUnknown     TrajectoryStatus = "unknown"
	TrajectoryAtGoal      TrajectoryStatus = "at_goal"
	TrajectoryNearGoal    TrajectoryStatus = "near_goal"
	TrajectoryGoingToGoal TrajectoryStatus = "going_to_goal"
	TrajectoryStopped     TrajectoryStatus = "stopped"
)

// BodyStatus reports whether the body is still in motion.
type BodyStatus string

const (
	BodyUnknown BodyStatus = "unknown"
	BodySettled BodyStatus = "settled"
	BodyMoving  BodyStatus = "moving"
)

// StandStatus reports the progress of a stand command.
type StandStatus string

const (
	StandUnknown    StandStatus = "unknown"
	StandStanding   StandStatus = "standing"
	StandInProgress StandStatus = "in_progress"
)

// CommandFeedback is one poll result.
type CommandFeedback struct {
	Status     CommandStatus    `json:"status"`
	Trajectory TrajectoryStatus `json:"trajectory,omitempty"`
	Body       BodyStatus       `json:"body,omitempty"`
	Stand      StandStatus      `json:"stand,omitempty"`
}

// MotionOutcome is the terminal state of one move command.
type MotionOutcome int

const (
	Reached MotionOutcome = iota
	NotReached
	Timeout
)

func (o MotionOutcome) String() string {
	switch o {
	case Reached:
		return "reached"
	case NotReached:
		return "not_reached"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Err maps a non-success outcome to its sentinel. Reached maps to nil.
func (o MotionOutcome) Err() error {
	switch o {
	case Reached:
		return nil
	case Timeout:
		return ErrMotionTimeout
	default:
		return ErrMotionFailed
	}
}
