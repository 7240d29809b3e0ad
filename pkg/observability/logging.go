package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/strider/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event to logger.
// Routine events log at Debug; failures log at Warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhase: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.InfoContext(ctx, "phase", "phase", e.Phase, "lease", e.LeaseID)
		},
		OnKeepAlive: func(ctx context.Context, e *domain.KeepAliveEvent) {
			if e.Err != nil {
				return // the guard already warns
			}
			logger.DebugContext(ctx, "keep-alive", "lease", e.LeaseID)
		},
		OnLeaseLost: func(ctx context.Context, e *domain.KeepAliveEvent) {
			logger.WarnContext(ctx, "lease lost", "lease", e.LeaseID, "failures", e.Failures, "err", e.Err)
		},
		OnMotion: func(ctx context.Context, e *domain.MotionEvent) {
			logger.InfoContext(ctx, "motion",
				"outcome", e.Outcome, "polls", e.Polls, "duration", e.Duration,
				"frame", e.Goal.Frame, "x", e.Goal.Goal.X, "y", e.Goal.Goal.Y, "yaw", e.Goal.Goal.Yaw)
		},
		OnCapture: func(ctx context.Context, e *domain.CaptureEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "capture failed", "kind", e.Kind, "name", e.Name, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "capture", "kind", e.Kind, "name", e.Name, "path", e.Path,
				"degraded", e.Degraded, "persisted", e.Persisted)
		},
	}
}
