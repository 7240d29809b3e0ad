package observability

import (
	"context"

	"github.com/aretw0/strider/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Phases          *prometheus.CounterVec
	KeepAlives      *prometheus.CounterVec
	LeasesLost      prometheus.Counter
	Motions         *prometheus.CounterVec
	MotionDuration  prometheus.Histogram
	MotionPolls     prometheus.Histogram
	Captures        *prometheus.CounterVec
	KeepAliveStreak prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if a collector is already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Phases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strider_session_phases_total",
			Help: "Session phases entered.",
		}, []string{"phase"}),
		KeepAlives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strider_keepalive_pings_total",
			Help: "Lease keep-alive pings by result.",
		}, []string{"result"}),
		LeasesLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "strider_leases_lost_total",
			Help: "Leases lost to consecutive keep-alive failures.",
		}),
		Motions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strider_motion_commands_total",
			Help: "Move commands by outcome.",
		}, []string{"outcome"}),
		MotionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "strider_motion_duration_seconds",
			Help:    "Time from issuing a move to its terminal state.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}),
		MotionPolls: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "strider_motion_polls",
			Help:    "Feedback polls per move command.",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
		Captures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "strider_captures_total",
			Help: "Capture attempts by kind and result.",
		}, []string{"kind", "result"}),
		KeepAliveStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "strider_keepalive_consecutive_failures",
			Help: "Current run of failed keep-alive pings.",
		}),
	}
	reg.MustRegister(m.Phases, m.KeepAlives, m.LeasesLost, m.Motions, m.MotionDuration, m.MotionPolls, m.Captures, m.KeepAliveStreak)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhase: func(_ context.Context, e *domain.PhaseEvent) {
			m.Phases.WithLabelValues(string(e.Phase)).Inc()
		},
		OnKeepAlive: func(_ context.Context, e *domain.KeepAliveEvent) {
			result := "ok"
			if e.Err != nil {
				result = "failed"
			}
			m.KeepAlives.WithLabelValues(result).Inc()
			m.KeepAliveStreak.Set(float64(e.Failures))
		},
		OnLeaseLost: func(context.Context, *domain.KeepAliveEvent) {
			m.LeasesLost.Inc()
		},
		OnMotion: func(_ context.Context, e *domain.MotionEvent) {
			m.Motions.WithLabelValues(e.Outcome.String()).Inc()
			m.MotionDuration.Observe(e.Duration.Seconds())
			m.MotionPolls.Observe(float64(e.Polls))
		},
		OnCapture: func(_ context.Context, e *domain.CaptureEvent) {
			m.Captures.WithLabelValues(e.Kind, captureResult(e)).Inc()
		},
	}
}

func captureResult(e *domain.CaptureEvent) string {
	switch {
	case e.Err != nil:
		return "failed"
	case !e.Persisted:
		return "unsaved"
	case e.Degraded:
		return "degraded"
	default:
		return "ok"
	}
}
