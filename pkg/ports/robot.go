package ports

import (
	"context"
	"time"

	"github.com/aretw0/strider/pkg/domain"
)

// Connector establishes a session with a robot at a host address.
type Connector interface {
	Connect(ctx context.Context, host string) (Robot, error)
}

// Robot is an established session. Accessors return service clients bound to it.
type Robot interface {
	// Authenticate performs the credential handshake (and any time sync the transport needs).
	// Failures must wrap domain.ErrAuthenticationFailed.
	Authenticate(ctx context.Context, username, password string) error

	// IsEstopped reports whether the emergency stop is engaged.
	IsEstopped(ctx context.Context) (bool, error)

	Lease() LeaseService
	Command() CommandService
	State() StateService
	Images() ImageService
	Power() PowerService
	Log() LogService
}

// LeaseService manages the exclusive-control token.
type LeaseService interface {
	// Take acquires the lease. It must fail fast with domain.ErrLeaseUnavailable
	// when another holder is active, never block.
	Take(ctx context.Context) (domain.LeaseToken, error)

	// Return releases the lease.
	Return(ctx context.Context, token domain.LeaseToken) error

	// KeepAlive renews the lease.
	KeepAlive(ctx context.Context, token domain.LeaseToken) error
}

// CommandService issues robot commands and reports their progress.
type CommandService interface {
	Stand(ctx context.Context, params domain.StandParams) (domain.CommandID, error)
	Move(ctx context.Context, goal domain.GoalTransform, params domain.MobilityParams, end time.Time) (domain.CommandID, error)
	Poll(ctx context.Context, id domain.CommandID) (domain.CommandFeedback, error)
}

// StateService reads the robot's kinematic state.
type StateService interface {
	Pose(ctx context.Context, frame domain.Frame) (domain.Pose, error)
}

// ImageService fetches raw frames, one per requested source name, in request order.
type ImageService interface {
	FetchFrames(ctx context.Context, sources []string) ([]domain.SensorFrame, error)
}

// PowerService switches motor power.
type PowerService interface {
	PowerOn(ctx context.Context, timeout time.Duration) error
	PowerOff(ctx context.Context, graceful bool, timeout time.Duration) error
	IsPoweredOn(ctx context.Context) (bool, error)
}

// LogService records operator comments in the robot's log.
type LogService interface {
	AppendComment(ctx context.Context, text string) error
}
