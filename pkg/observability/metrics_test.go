package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/aretw0/strider/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnPhase(ctx, &domain.PhaseEvent{Phase: domain.PhaseLeaseHeld})
	hooks.OnKeepAlive(ctx, &domain.KeepAliveEvent{})
	hooks.OnKeepAlive(ctx, &domain.KeepAliveEvent{Err: errors.New("timeout"), Failures: 1})
	hooks.OnKeepAlive(ctx, &domain.KeepAliveEvent{Err: errors.New("timeout"), Failures: 2})
	hooks.OnLeaseLost(ctx, &domain.KeepAliveEvent{Failures: 3})
	hooks.OnMotion(ctx, &domain.MotionEvent{Outcome: domain.Reached, Polls: 3, Duration: time.Second})
	hooks.OnMotion(ctx, &domain.MotionEvent{Outcome: domain.Timeout, Polls: 20, Duration: 10 * time.Second})
	hooks.OnCapture(ctx, &domain.CaptureEvent{Kind: "blend", Persisted: true})
	hooks.OnCapture(ctx, &domain.CaptureEvent{Kind: "single", Persisted: true, Degraded: true})
	hooks.OnCapture(ctx, &domain.CaptureEvent{Kind: "blend", Err: domain.ErrDecodeFailed})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Phases.WithLabelValues("lease_held")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KeepAlives.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.KeepAlives.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.KeepAliveStreak))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeasesLost))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Motions.WithLabelValues("reached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Motions.WithLabelValues("timeout")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.MotionDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Captures.WithLabelValues("blend", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Captures.WithLabelValues("single", "degraded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Captures.WithLabelValues("blend", "failed")))
}

func TestMetrics_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewMetrics(reg)
	assert.Panics(t, func() { observability.NewMetrics(reg) })
}

func TestLogHooks_MergeWithMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks().Merge(observability.LogHooks(logger))

	hooks.OnCapture(context.Background(), &domain.CaptureEvent{Kind: "blend", Name: "back", Err: domain.ErrDecodeFailed})

	assert.Contains(t, buf.String(), "capture failed")
	assert.Contains(t, buf.String(), "name=back")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Captures.WithLabelValues("blend", "failed")))
}
