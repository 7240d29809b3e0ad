package strider

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/strider/pkg/capture"
	"github.com/aretw0/strider/pkg/domain"
)

// Mission is the explicit configuration of one session.
type Mission struct {
	Behavior domain.Behavior   `json:"behavior"`
	Steps    []domain.MoveStep `json:"steps,omitempty"`
	// MoveTimeout caps each locomotion and stand step.
	MoveTimeout time.Duration `json:"move_timeout"`

	// Source is a single camera source to capture, e.g. "back_fisheye_image".
	Source string `json:"source,omitempty"`
	// Cameras are the positions to blend-capture.
	Cameras   []domain.CameraPosition `json:"cameras,omitempty"`
	OutputDir string                  `json:"output_dir"`
	Prefix    string                  `json:"prefix"`

	PowerTimeout time.Duration `json:"power_timeout"`
	StandTimeout time.Duration `json:"stand_timeout"`
	// Comment is appended to the robot log when the behavior finishes.
	Comment string `json:"comment,omitempty"`
}

// DefaultMission returns a mission that runs the default move plan.
func DefaultMission() Mission {
	return Mission{
		Behavior:     domain.BehaviorMove,
		Steps:        domain.DefaultMovePlan(),
		MoveTimeout:  10 * time.Second,
		Source:       "back_fisheye_image",
		Cameras:      []domain.CameraPosition{domain.CameraBack},
		OutputDir:    "results",
		Prefix:       "strider",
		PowerTimeout: 20 * time.Second,
		StandTimeout: 10 * time.Second,
	}
}

func (m Mission) withDefaults() Mission {
	d := DefaultMission()
	if b, err := domain.ParseBehavior(string(m.Behavior)); err == nil {
		m.Behavior = b
	}
	if m.Behavior == domain.BehaviorMove && len(m.Steps) == 0 {
		m.Steps = d.Steps
	}
	if m.MoveTimeout <= 0 {
		m.MoveTimeout = d.MoveTimeout
	}
	if m.OutputDir == "" {
		m.OutputDir = d.OutputDir
	}
	if m.Prefix == "" {
		m.Prefix = d.Prefix
	}
	if m.PowerTimeout <= 0 {
		m.PowerTimeout = d.PowerTimeout
	}
	if m.StandTimeout <= 0 {
		m.StandTimeout = d.StandTimeout
	}
	if m.Comment == "" && m.Behavior != domain.BehaviorNoOp {
		m.Comment = fmt.Sprintf("%s %s finished.", m.Prefix, m.Behavior)
	}
	return m
}

// Validate rejects missions that could only fail once the robot is powered.
func (m Mission) Validate() error {
	if _, err := domain.ParseBehavior(string(m.Behavior)); err != nil {
		return err
	}
	var errs []error
	for i, s := range m.Steps {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i, err))
		}
	}
	if m.Source != "" {
		if _, err := domain.ParseCameraSource(m.Source); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range m.Cameras {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("%w: %q", domain.ErrUnknownCamera, c))
		}
	}
	return errors.Join(errs...)
}

// StepResult is the outcome of one move plan step.
type StepResult struct {
	Step    domain.MoveStep      `json:"step"`
	Outcome domain.MotionOutcome `json:"outcome"`
}

// Report summarizes a session. It is returned even when the session fails.
type Report struct {
	LeaseID   string             `json:"lease_id,omitempty"`
	Behavior  domain.Behavior    `json:"behavior"`
	Phases    []domain.Phase     `json:"phases"`
	Steps     []StepResult       `json:"steps,omitempty"`
	Artifacts []capture.Artifact `json:"artifacts,omitempty"`
	// CaptureErrors lists captures that failed without aborting the session.
	CaptureErrors []string  `json:"capture_errors,omitempty"`
	Started       time.Time `json:"started"`
	Finished      time.Time `json:"finished"`
	Error         string    `json:"error,omitempty"`
}

// Succeeded reports whether the session ended without error.
func (r *Report) Succeeded() bool {
	return r.Error == ""
}

// SessionError is the structured failure of Run. Phase is the last phase reached.
type SessionError struct {
	Phase domain.Phase
	Err   error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session failed in phase %s: %v", e.Phase, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
