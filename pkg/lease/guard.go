package lease

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/strider/internal/logging"
	"github.com/aretw0/strider/internal/timeutil"
	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/ports"
)

// Config tunes the keep-alive loop.
type Config struct {
	// Interval between liveness pings. Keep it well below the robot's lease timeout.
	Interval time.Duration `json:"interval"`
	// PingTimeout bounds a single ping.
	PingTimeout time.Duration `json:"ping_timeout"`
	// FailureThreshold is the number of consecutive failed pings that loses the lease.
	FailureThreshold int `json:"failure_threshold"`
}

// DefaultConfig returns the keep-alive settings used when none are given.
func DefaultConfig() Config {
	return Config{
		Interval:         time.Second,
		PingTimeout:      2 * time.Second,
		FailureThreshold: 3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = d.PingTimeout
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	return c
}

// EstopChecker reports whether the emergency stop is engaged.
type EstopChecker interface {
	IsEstopped(ctx context.Context) (bool, error)
}

// Guard owns the lease lifecycle: acquire, keep alive, release.
type Guard struct {
	svc    ports.LeaseService
	estop  EstopChecker
	cfg    Config
	clock  timeutil.Clock
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	mu   sync.Mutex
	held map[string]struct{}
}

// Option configures the Guard.
type Option func(*Guard)

// WithConfig sets the keep-alive configuration. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(g *Guard) {
		g.cfg = cfg.withDefaults()
	}
}

// WithClock injects the clock driving the keep-alive ticker.
func WithClock(clock timeutil.Clock) Option {
	return func(g *Guard) {
		g.clock = clock
	}
}

// WithLogger configures a logger for the Guard.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithHooks registers keep-alive and lease-lost callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Guard) {
		g.hooks = hooks
	}
}

// NewGuard creates a Guard over a lease service. estop is consulted before every acquisition.
func NewGuard(svc ports.LeaseService, estop EstopChecker, opts ...Option) *Guard {
	g := &Guard{
		svc:    svc,
		estop:  estop,
		cfg:    DefaultConfig(),
		clock:  timeutil.RealClock{},
		logger: logging.NewNop(),
		held:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire takes the lease. The emergency stop is checked first; an engaged stop
// returns domain.ErrEstopActive without touching the lease service. A lease held by
// someone else returns domain.ErrLeaseUnavailable immediately.
func (g *Guard) Acquire(ctx context.Context) (domain.LeaseToken, error) {
	stopped, err := g.estop.IsEstopped(ctx)
	if err != nil {
		return domain.LeaseToken{}, fmt.Errorf("failed to check estop: %w", err)
	}
	if stopped {
		return domain.LeaseToken{}, domain.ErrEstopActive
	}

	token, err := g.svc.Take(ctx)
	if err != nil {
		return domain.LeaseToken{}, fmt.Errorf("failed to take lease: %w", err)
	}

	g.mu.Lock()
	g.held[token.ID] = struct{}{}
	g.mu.Unlock()

	g.logger.Debug("lease acquired", "lease", token.ID)
	return token, nil
}

// Release returns the lease. Each acquired token is returned at most once; a second
// call returns domain.ErrLeaseNotHeld without contacting the service.
func (g *Guard) Release(ctx context.Context, token domain.LeaseToken) error {
	g.mu.Lock()
	_, ok := g.held[token.ID]
	delete(g.held, token.ID)
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrLeaseNotHeld, token.ID)
	}

	if err := g.svc.Return(ctx, token); err != nil {
		return fmt.Errorf("failed to return lease: %w", err)
	}
	g.logger.Debug("lease released", "lease", token.ID)
	return nil
}

func (g *Guard) holds(token domain.LeaseToken) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[token.ID]
	return ok
}

// WithKeepAlive runs body while a background goroutine keeps the lease alive.
//
// The keep-alive goroutine is stopped and joined on every exit path before
// WithKeepAlive returns. When consecutive ping failures reach the threshold, the
// body's context is cancelled with a domain.ErrLeaseLost cause and the returned
// error wraps domain.ErrLeaseLost.
func (g *Guard) WithKeepAlive(ctx context.Context, token domain.LeaseToken, body func(context.Context) error) (err error) {
	if !g.holds(token) {
		return fmt.Errorf("%w: %s", domain.ErrLeaseNotHeld, token.ID)
	}

	bodyCtx, cancel := context.WithCancelCause(withToken(ctx, token))
	stop := make(chan struct{})
	var lost atomic.Pointer[error]

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.keepAlive(ctx, token, stop, func(cause error) {
			lost.Store(&cause)
			cancel(cause)
		})
	}()

	defer func() {
		close(stop)
		wg.Wait()
		cancel(nil)

		if p := lost.Load(); p != nil && !errors.Is(err, domain.ErrLeaseLost) {
			if err == nil || errors.Is(err, context.Canceled) {
				err = *p
			} else {
				err = errors.Join(*p, err)
			}
		}
	}()

	return body(bodyCtx)
}

// keepAlive pings until stop is closed or the failure threshold is reached.
// onLost is called at most once.
func (g *Guard) keepAlive(ctx context.Context, token domain.LeaseToken, stop <-chan struct{}, onLost func(error)) {
	ticker := g.clock.NewTicker(g.cfg.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C():
		}

		pingCtx, cancel := context.WithTimeout(ctx, g.cfg.PingTimeout)
		err := g.svc.KeepAlive(pingCtx, token)
		cancel()

		if err != nil && ctx.Err() != nil {
			// The caller is shutting down; a ping cut short by that is not a lease failure.
			return
		}

		if err == nil {
			failures = 0
		} else {
			failures++
			g.logger.Warn("keep-alive ping failed",
				"lease", token.ID, "failures", failures, "threshold", g.cfg.FailureThreshold, "err", err)
		}

		event := &domain.KeepAliveEvent{
			EventBase: domain.EventBase{Timestamp: g.clock.Now(), LeaseID: token.ID},
			Err:       err,
			Failures:  failures,
		}
		if g.hooks.OnKeepAlive != nil {
			g.hooks.OnKeepAlive(ctx, event)
		}

		if failures >= g.cfg.FailureThreshold {
			cause := fmt.Errorf("%w: %d consecutive keep-alive failures: %v", domain.ErrLeaseLost, failures, err)
			g.logger.Error("lease lost", "lease", token.ID, "failures", failures)
			onLost(cause)
			if g.hooks.OnLeaseLost != nil {
				g.hooks.OnLeaseLost(ctx, event)
			}
			return
		}
	}
}
