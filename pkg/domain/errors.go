package domain

import "errors"

// ErrEstopActive is returned when the robot's emergency stop is engaged.
// Nothing is acquired or actuated when this is returned.
var ErrEstopActive = errors.New("estop active")

// ErrLeaseUnavailable is returned when another holder owns the lease.
var ErrLeaseUnavailable = errors.New("lease unavailable")

// ErrLeaseLost is raised when keep-alive failures reach the configured threshold.
var ErrLeaseLost = errors.New("lease lost")

// ErrLeaseNotHeld is returned when an actuation is attempted outside a lease scope,
// or when a token is released twice.
var ErrLeaseNotHeld = errors.New("lease not held")

// ErrAuthenticationFailed is returned when the transport handshake fails.
var ErrAuthenticationFailed = errors.New("authentication failed")

// ErrMotionTimeout reports a move that did not finish before its deadline.
var ErrMotionTimeout = errors.New("motion timeout")

// ErrMotionFailed reports a move that stopped without reaching its goal.
var ErrMotionFailed = errors.New("motion failed")

// ErrPowerFailed is returned when the motors did not reach the requested power state.
var ErrPowerFailed = errors.New("power failed")

// ErrUnsupportedFormat is returned for pixel formats or channel layouts the codec does not handle.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrDecodeFailed is returned when a frame payload cannot be turned into pixels.
var ErrDecodeFailed = errors.New("decode failed")

// ErrPersistenceFailed wraps artifact write failures. It is logged, never propagated.
var ErrPersistenceFailed = errors.New("persistence failed")

// ErrUnknownCamera is returned for camera position names outside the closed set.
var ErrUnknownCamera = errors.New("unknown camera position")

// ErrUnknownSource is returned for source names that do not match exactly.
var ErrUnknownSource = errors.New("unknown camera source")

// ErrUnknownBehavior is returned for unrecognized behavior names.
var ErrUnknownBehavior = errors.New("unknown behavior")

// ErrSessionPanic reports a panic recovered while the robot was powered.
var ErrSessionPanic = errors.New("session panicked")
