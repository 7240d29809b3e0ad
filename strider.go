package strider

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/aretw0/strider/internal/logging"
	"github.com/aretw0/strider/internal/timeutil"
	"github.com/aretw0/strider/pkg/capture"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/imaging"
	"github.com/aretw0/strider/pkg/lease"
	"github.com/aretw0/strider/pkg/motion"
	"github.com/aretw0/strider/pkg/ports"
)

// DefaultDialTimeout bounds Connect when the caller's context has no earlier deadline.
const DefaultDialTimeout = 10 * time.Second

// Engine is the high-level entry point for the Strider library.
// It sequences one lease session on a robot: power, posture, behavior, release.
type Engine struct {
	robot    ports.Robot
	leaseSvc ports.LeaseService
	store    ports.ArtifactStore
	codec    *imaging.Codec
	clock    timeutil.Clock
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	leaseCfg lease.Config
	moveCfg  motion.Config

	guard   *lease.Guard
	motion  *motion.Controller
	capture *capture.Session
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock injects the clock used by polling, keep-alive and reports.
func WithClock(clock timeutil.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithStore sets where capture artifacts are written.
func WithStore(store ports.ArtifactStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLeaseService replaces the robot's own lease service, e.g. with a
// cross-process arbiter that decorates it.
func WithLeaseService(svc ports.LeaseService) Option {
	return func(e *Engine) {
		e.leaseSvc = svc
	}
}

// WithLeaseConfig tunes the keep-alive loop.
func WithLeaseConfig(cfg lease.Config) Option {
	return func(e *Engine) {
		e.leaseCfg = cfg
	}
}

// WithMotionConfig tunes command polling.
func WithMotionConfig(cfg motion.Config) Option {
	return func(e *Engine) {
		e.moveCfg = cfg
	}
}

// WithCodec sets the codec used to decode visual frames.
func WithCodec(codec *imaging.Codec) Option {
	return func(e *Engine) {
		e.codec = codec
	}
}

// New creates an Engine bound to an authenticated robot session.
// Captures are discarded unless WithStore is given.
func New(robot ports.Robot, opts ...Option) (*Engine, error) {
	if robot == nil {
		return nil, fmt.Errorf("robot is required")
	}
	eng := &Engine{
		robot:    robot,
		codec:    imaging.NewCodec(),
		clock:    timeutil.RealClock{},
		leaseCfg: lease.DefaultConfig(),
		moveCfg:  motion.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.leaseSvc == nil {
		eng.leaseSvc = robot.Lease()
	}
	if eng.store == nil {
		eng.store = discard{}
	}

	eng.guard = lease.NewGuard(eng.leaseSvc, robot,
		lease.WithConfig(eng.leaseCfg),
		lease.WithClock(eng.clock),
		lease.WithLogger(eng.logger.With("component", "lease")),
		lease.WithHooks(eng.hooks),
	)
	eng.motion = motion.NewController(robot.Command(), robot.State(),
		motion.WithConfig(eng.moveCfg),
		motion.WithClock(eng.clock),
		motion.WithLogger(eng.logger.With("component", "motion")),
		motion.WithHooks(eng.hooks),
	)
	eng.capture = capture.NewSession(robot.Images(), eng.store,
		capture.WithCodec(eng.codec),
		capture.WithClock(eng.clock),
		capture.WithLogger(eng.logger.With("component", "capture")),
		capture.WithHooks(eng.hooks),
	)
	return eng, nil
}

// Connect dials host and authenticates. Any failure, including an expired
// handshake deadline, wraps domain.ErrAuthenticationFailed.
func Connect(ctx context.Context, connector ports.Connector, host, username, password string) (ports.Robot, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultDialTimeout)
	defer cancel()

	robot, err := connector.Connect(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %w", domain.ErrAuthenticationFailed, host, err)
	}
	if err := robot.Authenticate(ctx, username, password); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
	}
	return robot, nil
}

type discard struct{}

func (discard) Save(context.Context, string, image.Image) error { return nil }
