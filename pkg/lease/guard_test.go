package lease_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/lease"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLeaseService simulates the robot's lease service.
type MockLeaseService struct {
	mock.Mock
}

func (m *MockLeaseService) Take(ctx context.Context) (domain.LeaseToken, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.LeaseToken), args.Error(1)
}

func (m *MockLeaseService) Return(ctx context.Context, token domain.LeaseToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockLeaseService) KeepAlive(ctx context.Context, token domain.LeaseToken) error {
	return m.Called(ctx, token).Error(0)
}

type estop bool

func (e estop) IsEstopped(context.Context) (bool, error) { return bool(e), nil }

var (
	token   = domain.LeaseToken{ID: "lease-1", Holder: "test"}
	errPing = errors.New("ping timed out")
	fast    = lease.Config{Interval: time.Millisecond, PingTimeout: 50 * time.Millisecond, FailureThreshold: 3}
)

func newGuard(t *testing.T, svc *MockLeaseService, hooks domain.LifecycleHooks) (*lease.Guard, domain.LeaseToken) {
	t.Helper()
	svc.On("Take", mock.Anything).Return(token, nil).Once()
	g := lease.NewGuard(svc, estop(false), lease.WithConfig(fast), lease.WithHooks(hooks))
	tok, err := g.Acquire(context.Background())
	require.NoError(t, err)
	return g, tok
}

func TestAcquire_EstopBlocksTake(t *testing.T) {
	svc := new(MockLeaseService)
	g := lease.NewGuard(svc, estop(true))

	_, err := g.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrEstopActive)
	svc.AssertNotCalled(t, "Take", mock.Anything)
}

func TestAcquire_Unavailable(t *testing.T) {
	svc := new(MockLeaseService)
	svc.On("Take", mock.Anything).Return(domain.LeaseToken{}, domain.ErrLeaseUnavailable)
	g := lease.NewGuard(svc, estop(false))

	_, err := g.Acquire(context.Background())
	assert.ErrorIs(t, err, domain.ErrLeaseUnavailable)
}

func TestRelease_ExactlyOnce(t *testing.T) {
	svc := new(MockLeaseService)
	g, tok := newGuard(t, svc, domain.LifecycleHooks{})
	svc.On("Return", mock.Anything, tok).Return(nil).Once()

	require.NoError(t, g.Release(context.Background(), tok))
	err := g.Release(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
	svc.AssertNumberOfCalls(t, "Return", 1)
}

func TestWithKeepAlive_TokenInScope(t *testing.T) {
	svc := new(MockLeaseService)
	g, tok := newGuard(t, svc, domain.LifecycleHooks{})
	svc.On("KeepAlive", mock.Anything, tok).Return(nil).Maybe()

	var inner context.Context
	err := g.WithKeepAlive(context.Background(), tok, func(ctx context.Context) error {
		got, err := lease.Require(ctx)
		require.NoError(t, err)
		assert.Equal(t, tok, got)
		inner = ctx
		return nil
	})
	require.NoError(t, err)

	_, err = lease.Require(inner)
	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld, "scope ended")
	_, err = lease.Require(context.Background())
	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
}

func TestWithKeepAlive_RequiresHeldToken(t *testing.T) {
	g := lease.NewGuard(new(MockLeaseService), estop(false))
	called := false
	err := g.WithKeepAlive(context.Background(), token, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrLeaseNotHeld)
	assert.False(t, called)
}

func TestWithKeepAlive_FailuresBelowThreshold(t *testing.T) {
	svc := new(MockLeaseService)
	var lost, pings atomic.Int32
	g, tok := newGuard(t, svc, domain.LifecycleHooks{
		OnKeepAlive: func(context.Context, *domain.KeepAliveEvent) { pings.Add(1) },
		OnLeaseLost: func(context.Context, *domain.KeepAliveEvent) { lost.Add(1) },
	})

	// Two failures, then recovery: the counter resets and the lease survives.
	svc.On("KeepAlive", mock.Anything, tok).Return(errPing).Twice()
	svc.On("KeepAlive", mock.Anything, tok).Return(nil)

	err := g.WithKeepAlive(context.Background(), tok, func(ctx context.Context) error {
		require.Eventually(t, func() bool {
			return pings.Load() > 6
		}, time.Second, time.Millisecond)
		return ctx.Err()
	})

	assert.NoError(t, err)
	assert.Zero(t, lost.Load())
}

func TestWithKeepAlive_ThresholdLosesLeaseOnce(t *testing.T) {
	svc := new(MockLeaseService)
	var lost, pings atomic.Int32
	g, tok := newGuard(t, svc, domain.LifecycleHooks{
		OnKeepAlive: func(context.Context, *domain.KeepAliveEvent) { pings.Add(1) },
		OnLeaseLost: func(context.Context, *domain.KeepAliveEvent) { lost.Add(1) },
	})
	svc.On("KeepAlive", mock.Anything, tok).Return(errPing)

	err := g.WithKeepAlive(context.Background(), tok, func(ctx context.Context) error {
		<-ctx.Done()
		_, reqErr := lease.Require(ctx)
		assert.ErrorIs(t, reqErr, domain.ErrLeaseLost)
		return context.Cause(ctx)
	})

	require.ErrorIs(t, err, domain.ErrLeaseLost)
	assert.Equal(t, int32(1), lost.Load())
	assert.Equal(t, int32(fast.FailureThreshold), pings.Load())

	// The keep-alive goroutine has been joined: no further pings happen.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(fast.FailureThreshold), pings.Load())
}

func TestWithKeepAlive_LostLeaseOverridesCleanReturn(t *testing.T) {
	svc := new(MockLeaseService)
	g, tok := newGuard(t, svc, domain.LifecycleHooks{})
	svc.On("KeepAlive", mock.Anything, tok).Return(errPing)

	err := g.WithKeepAlive(context.Background(), tok, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrLeaseLost)
}

func TestWithKeepAlive_BodyErrorJoined(t *testing.T) {
	svc := new(MockLeaseService)
	g, tok := newGuard(t, svc, domain.LifecycleHooks{})
	svc.On("KeepAlive", mock.Anything, tok).Return(errPing)

	boom := errors.New("boom")
	err := g.WithKeepAlive(context.Background(), tok, func(ctx context.Context) error {
		<-ctx.Done()
		return boom
	})
	assert.ErrorIs(t, err, domain.ErrLeaseLost)
	assert.ErrorIs(t, err, boom)
}

func TestWithKeepAlive_StopsOnPanic(t *testing.T) {
	svc := new(MockLeaseService)
	var pings atomic.Int32
	g, tok := newGuard(t, svc, domain.LifecycleHooks{
		OnKeepAlive: func(context.Context, *domain.KeepAliveEvent) { pings.Add(1) },
	})
	svc.On("KeepAlive", mock.Anything, tok).Return(nil).Maybe()

	assert.Panics(t, func() {
		_ = g.WithKeepAlive(context.Background(), tok, func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			panic("body failed")
		})
	})

	after := pings.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, pings.Load())
}
