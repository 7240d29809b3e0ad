package motion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/strider/internal/logging"
	"github.com/aretw0/strider/internal/timeutil"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/lease"
	"github.com/aretw0/strider/pkg/ports"
)

// Config tunes command polling.
type Config struct {
	// PollInterval is the wait between feedback polls.
	PollInterval time.Duration `json:"poll_interval"`
	// SettleDelay is the pause after a posture change that has no completion feedback.
	SettleDelay time.Duration `json:"settle_delay"`
}

// DefaultConfig returns the polling settings used when none are given.
func DefaultConfig() Config {
	return Config{
		PollInterval: 500 * time.Millisecond,
		SettleDelay:  200 * time.Millisecond,
	}
}

// MoveRequest describes a relative move.
type MoveRequest struct {
	DX      float64
	DY      float64
	DYawDeg float64
	Frame   domain.Frame
	Stairs  bool
	Timeout time.Duration
}

// Controller issues locomotion and posture commands and drives them to completion.
// Every command requires a context carrying a live lease (see lease.Require).
type Controller struct {
	cmd    ports.CommandService
	state  ports.StateService
	cfg    Config
	clock  timeutil.Clock
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Controller.
type Option func(*Controller)

// WithConfig sets the polling configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		d := DefaultConfig()
		if cfg.PollInterval <= 0 {
			cfg.PollInterval = d.PollInterval
		}
		if cfg.SettleDelay < 0 {
			cfg.SettleDelay = d.SettleDelay
		}
		c.cfg = cfg
	}
}

// WithClock injects the clock used for polling waits and deadlines.
func WithClock(clock timeutil.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHooks registers the motion outcome callback.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// NewController creates a Controller.
func NewController(cmd ports.CommandService, state ports.StateService, opts ...Option) *Controller {
	c := &Controller{
		cmd:    cmd,
		state:  state,
		cfg:    DefaultConfig(),
		clock:  timeutil.RealClock{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MoveRelative walks the robot by a body-relative displacement and waits for the
// outcome. The current pose is read once; the command expires Timeout after issue.
//
// A zero or negative Timeout returns domain.Timeout without issuing anything.
// NotReached and Timeout are outcomes, not errors; an error is returned only when the
// lease is missing, the robot cannot be reached, or ctx is cancelled.
func (c *Controller) MoveRelative(ctx context.Context, req MoveRequest) (domain.MotionOutcome, error) {
	if _, err := lease.Require(ctx); err != nil {
		return domain.NotReached, err
	}
	if req.Timeout <= 0 {
		c.emit(ctx, domain.GoalTransform{Frame: req.Frame}, domain.Timeout, 0, 0)
		return domain.Timeout, nil
	}

	frame := req.Frame
	if frame == "" {
		frame = domain.FrameOdom
	}
	pose, err := c.state.Pose(ctx, frame)
	if err != nil {
		return domain.NotReached, fmt.Errorf("failed to read pose in %s: %w", frame, err)
	}
	goal := ComposeGoal(pose, frame, req.DX, req.DY, req.DYawDeg)

	start := c.clock.Now()
	id, err := c.cmd.Move(ctx, goal, domain.MobilityParams{StairsMode: req.Stairs}, start.Add(req.Timeout))
	if err != nil {
		return domain.NotReached, fmt.Errorf("failed to issue move: %w", err)
	}
	c.logger.Debug("move issued", "command", id, "dx", req.DX, "dy", req.DY, "dyaw", req.DYawDeg, "frame", frame)

	outcome, polls, err := c.await(ctx, id, start, req.Timeout, moveVerdict)
	c.emit(ctx, goal, outcome, polls, c.clock.Since(start))
	if err != nil {
		return outcome, err
	}
	if outcome != domain.Reached {
		c.logger.Warn("move did not reach goal", "command", id, "outcome", outcome, "polls", polls)
	}
	return outcome, nil
}

// Stand commands a plain stand and waits until the robot reports standing.
func (c *Controller) Stand(ctx context.Context, timeout time.Duration) (domain.MotionOutcome, error) {
	if _, err := lease.Require(ctx); err != nil {
		return domain.NotReached, err
	}
	if timeout <= 0 {
		return domain.Timeout, nil
	}
	start := c.clock.Now()
	id, err := c.cmd.Stand(ctx, domain.StandParams{})
	if err != nil {
		return domain.NotReached, fmt.Errorf("failed to issue stand: %w", err)
	}
	outcome, _, err := c.await(ctx, id, start, timeout, standVerdict)
	return outcome, err
}

// Twist sets the body orientation while standing, then waits for it to settle.
func (c *Controller) Twist(ctx context.Context, o domain.Orientation) error {
	return c.posture(ctx, domain.StandParams{Orientation: o})
}

// StandHeight offsets the body height (meters) while standing, then waits for it to settle.
func (c *Controller) StandHeight(ctx context.Context, meters float64) error {
	return c.posture(ctx, domain.StandParams{BodyHeight: meters})
}

func (c *Controller) posture(ctx context.Context, params domain.StandParams) error {
	if _, err := lease.Require(ctx); err != nil {
		return err
	}
	if _, err := c.cmd.Stand(ctx, params); err != nil {
		return fmt.Errorf("failed to issue stand: %w", err)
	}
	return timeutil.Sleep(ctx, c.clock, c.cfg.SettleDelay)
}

// RunStep executes one step of a move plan. Posture steps report Reached once settled.
func (c *Controller) RunStep(ctx context.Context, step domain.MoveStep, timeout time.Duration) (domain.MotionOutcome, error) {
	switch step.Kind {
	case domain.StepStand:
		return c.Stand(ctx, timeout)
	case domain.StepTwist:
		err := c.Twist(ctx, domain.Orientation{Yaw: step.DYaw, Roll: step.Roll, Pitch: step.Pitch})
		return settled(err)
	case domain.StepHeight:
		return settled(c.StandHeight(ctx, step.Height))
	case domain.StepMove:
		return c.MoveRelative(ctx, MoveRequest{
			DX:      step.DX,
			DY:      step.DY,
			DYawDeg: step.DYaw,
			Frame:   step.Frame,
			Stairs:  step.Stairs,
			Timeout: timeout,
		})
	default:
		return domain.NotReached, step.Validate()
	}
}

func settled(err error) (domain.MotionOutcome, error) {
	if err != nil {
		return domain.NotReached, err
	}
	return domain.Reached, nil
}

// verdict inspects one feedback sample. done is false while the command is still in flight.
type verdict func(domain.CommandFeedback) (outcome domain.MotionOutcome, done bool)

func moveVerdict(fb domain.CommandFeedback) (domain.MotionOutcome, bool) {
	if fb.Status != domain.CommandProcessing {
		return domain.NotReached, true
	}
	if fb.Trajectory == domain.TrajectoryAtGoal && fb.Body == domain.BodySettled {
		return domain.Reached, true
	}
	return domain.NotReached, false
}

func standVerdict(fb domain.CommandFeedback) (domain.MotionOutcome, bool) {
	if fb.Stand == domain.StandStanding {
		return domain.Reached, true
	}
	if fb.Status != domain.CommandProcessing && fb.Status != domain.CommandCompleted {
		return domain.NotReached, true
	}
	return domain.NotReached, false
}

// await polls a command until check reports a terminal state or the deadline passes.
// Waits are capped at the remaining time and abort as soon as ctx is done.
func (c *Controller) await(ctx context.Context, id domain.CommandID, start time.Time, timeout time.Duration, check verdict) (domain.MotionOutcome, int, error) {
	polls := 0
	for {
		fb, err := c.cmd.Poll(ctx, id)
		polls++
		if err != nil {
			return domain.NotReached, polls, fmt.Errorf("failed to poll command %s: %w", id, err)
		}
		if outcome, done := check(fb); done {
			return outcome, polls, nil
		}

		remaining := timeout - c.clock.Since(start)
		if remaining <= 0 {
			return domain.Timeout, polls, nil
		}
		if err := timeutil.Sleep(ctx, c.clock, min(c.cfg.PollInterval, remaining)); err != nil {
			return domain.NotReached, polls, fmt.Errorf("command %s interrupted: %w", id, err)
		}
		if c.clock.Since(start) >= timeout {
			return domain.Timeout, polls, nil
		}
	}
}

func (c *Controller) emit(ctx context.Context, goal domain.GoalTransform, outcome domain.MotionOutcome, polls int, d time.Duration) {
	if c.hooks.OnMotion == nil {
		return
	}
	token, _ := lease.FromContext(ctx)
	c.hooks.OnMotion(ctx, &domain.MotionEvent{
		EventBase: domain.EventBase{Timestamp: c.clock.Now(), LeaseID: token.ID},
		Goal:      goal,
		Outcome:   outcome,
		Polls:     polls,
		Duration:  d,
	})
}
