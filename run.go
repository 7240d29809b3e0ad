package strider

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/strider/pkg/domain"
)

// session carries the mutable state of one Run.
type session struct {
	mission Mission
	report  *Report
	phase   domain.Phase
	leaseID string
}

// Run executes one mission inside a single lease session:
//
//	Init -> LeaseHeld -> PoweredOn -> Executing -> PoweredOff -> LeaseReleased
//
// An engaged e-stop or a lease held elsewhere aborts before anything is powered.
// Once the lease is taken it is released exactly once on every exit path, and a
// powered robot is switched off gracefully even when the behavior fails or the
// lease is lost. The returned error is nil or a *SessionError; the Report is
// always non-nil.
func (e *Engine) Run(ctx context.Context, m Mission) (report *Report, err error) {
	m = m.withDefaults()
	s := &session{mission: m, report: &Report{Behavior: m.Behavior, Started: e.clock.Now()}}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("session panicked", "phase", s.phase, "panic", r)
			report, err = s.report, &SessionError{Phase: s.phase, Err: fmt.Errorf("%w: %v", domain.ErrSessionPanic, r)}
		}
		s.report.Finished = e.clock.Now()
		if err != nil {
			s.report.Error = err.Error()
		}
	}()

	e.enter(ctx, s, domain.PhaseInit)
	if err := m.Validate(); err != nil {
		return s.report, &SessionError{Phase: s.phase, Err: err}
	}

	token, err := e.guard.Acquire(ctx)
	if err != nil {
		e.logger.Error("session aborted before lease", "err", err)
		return s.report, &SessionError{Phase: s.phase, Err: err}
	}
	s.leaseID = token.ID
	s.report.LeaseID = token.ID
	e.enter(ctx, s, domain.PhaseLeaseHeld)

	defer func() {
		relErr := e.guard.Release(context.WithoutCancel(ctx), token)
		if relErr != nil {
			e.logger.Error("failed to release lease", "lease", token.ID, "err", relErr)
			var se *SessionError
			if errors.As(err, &se) {
				se.Err = errors.Join(se.Err, relErr)
			} else {
				err = &SessionError{Phase: s.phase, Err: relErr}
			}
			return
		}
		e.enter(ctx, s, domain.PhaseLeaseReleased)
	}()

	if err := e.guard.WithKeepAlive(ctx, token, func(ctx context.Context) error {
		return e.powered(ctx, s)
	}); err != nil {
		e.logger.Error("session failed", "phase", s.phase, "err", err)
		return s.report, &SessionError{Phase: s.phase, Err: err}
	}
	return s.report, nil
}

// powered runs the part of the session that needs motor power.
func (e *Engine) powered(ctx context.Context, s *session) (err error) {
	m := s.mission
	// Any failure from here on, a partial power-on or a panic included, gets a cutoff attempt.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrSessionPanic, r)
		}
		if err != nil {
			e.powerOffBestEffort(ctx, m.PowerTimeout)
		}
	}()

	if err := e.powerOn(ctx, m.PowerTimeout); err != nil {
		return err
	}
	e.enter(ctx, s, domain.PhasePoweredOn)

	outcome, err := e.motion.Stand(ctx, m.StandTimeout)
	if err != nil {
		return fmt.Errorf("failed to stand: %w", err)
	}
	if outcome != domain.Reached {
		return fmt.Errorf("failed to stand: %w", outcome.Err())
	}

	e.enter(ctx, s, domain.PhaseExecuting)
	switch m.Behavior {
	case domain.BehaviorMove:
		err = e.runMove(ctx, s)
	case domain.BehaviorCapture:
		err = e.runCapture(ctx, s)
	case domain.BehaviorNoOp:
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnknownBehavior, m.Behavior)
	}
	if err != nil {
		return err
	}

	if err := e.powerOff(ctx, m.PowerTimeout); err != nil {
		return err
	}
	e.enter(ctx, s, domain.PhasePoweredOff)

	if m.Comment != "" {
		if err := e.robot.Log().AppendComment(ctx, m.Comment); err != nil {
			e.logger.Warn("failed to log comment", "err", err)
		}
	}
	return nil
}

func (e *Engine) runMove(ctx context.Context, s *session) error {
	for i, step := range s.mission.Steps {
		outcome, err := e.motion.RunStep(ctx, step, s.mission.MoveTimeout)
		s.report.Steps = append(s.report.Steps, StepResult{Step: step, Outcome: outcome})
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Kind, err)
		}
		if outcome != domain.Reached {
			e.logger.Warn("aborting move plan", "step", i, "kind", step.Kind, "outcome", outcome)
			return fmt.Errorf("step %d (%s): %w", i, step.Kind, outcome.Err())
		}
	}
	return nil
}

// runCapture records failed captures in the report and carries on; only a lost
// lease or a cancelled context stops it.
func (e *Engine) runCapture(ctx context.Context, s *session) error {
	m := s.mission
	failed := func(err error) error {
		if ctx.Err() != nil {
			return err
		}
		s.report.CaptureErrors = append(s.report.CaptureErrors, err.Error())
		return nil
	}

	if m.Source != "" {
		src, err := domain.ParseCameraSource(m.Source)
		if err != nil {
			return err
		}
		path := filepath.Join(m.OutputDir, "from_source", fmt.Sprintf("%s_%s.png", m.Prefix, src.Name()))
		art, err := e.capture.CaptureSingle(ctx, src, path)
		if err != nil {
			if err := failed(err); err != nil {
				return err
			}
		} else {
			s.report.Artifacts = append(s.report.Artifacts, art)
		}
	}

	for _, p := range m.Cameras {
		path := filepath.Join(m.OutputDir, "depth_images", fmt.Sprintf("%s_%s.png", m.Prefix, p))
		art, err := e.capture.CaptureBlend(ctx, p, path)
		if err != nil {
			if err := failed(err); err != nil {
				return err
			}
			continue
		}
		s.report.Artifacts = append(s.report.Artifacts, art)
	}
	return nil
}

func (e *Engine) powerOn(ctx context.Context, timeout time.Duration) error {
	e.logger.Info("powering on", "timeout", timeout)
	if err := e.robot.Power().PowerOn(ctx, timeout); err != nil {
		return fmt.Errorf("%w: failed to power on: %w", domain.ErrPowerFailed, err)
	}
	on, err := e.robot.Power().IsPoweredOn(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to read power state: %w", domain.ErrPowerFailed, err)
	}
	if !on {
		return fmt.Errorf("%w: robot did not report power on", domain.ErrPowerFailed)
	}
	return nil
}

func (e *Engine) powerOff(ctx context.Context, timeout time.Duration) error {
	if err := e.robot.Power().PowerOff(ctx, true, timeout); err != nil {
		return fmt.Errorf("%w: failed to power off: %w", domain.ErrPowerFailed, err)
	}
	on, err := e.robot.Power().IsPoweredOn(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to read power state: %w", domain.ErrPowerFailed, err)
	}
	if on {
		return fmt.Errorf("%w: robot still powered after power off", domain.ErrPowerFailed)
	}
	e.logger.Info("powered off")
	return nil
}

// powerOffBestEffort cuts power gracefully on a context detached from ctx's
// cancellation, so it still runs after a lost lease. Failures are logged.
func (e *Engine) powerOffBestEffort(ctx context.Context, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := e.robot.Power().PowerOff(ctx, true, timeout); err != nil {
		e.logger.Warn("power off after failure did not succeed", "err", err)
	}
}

func (e *Engine) enter(ctx context.Context, s *session, phase domain.Phase) {
	s.phase = phase
	s.report.Phases = append(s.report.Phases, phase)
	e.logger.Debug("phase", "phase", phase, "lease", s.leaseID)
	if e.hooks.OnPhase != nil {
		e.hooks.OnPhase(ctx, &domain.PhaseEvent{
			EventBase: domain.EventBase{Timestamp: e.clock.Now(), LeaseID: s.leaseID},
			Phase:     phase,
		})
	}
}
