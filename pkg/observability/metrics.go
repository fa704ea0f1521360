package observability

import (
	"context"

	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "igkernel"

// Metrics holds the kernel's collectors.
type Metrics struct {
	registry *prometheus.Registry

	Frames          prometheus.Counter
	FrameDuration   prometheus.Histogram
	Overruns        prometheus.Counter
	DecodeErrors    prometheus.Counter
	RecvErrors      prometheus.Counter
	SendErrors      prometheus.Counter
	DroppedMessages prometheus.Counter
	MessagesSent    prometheus.Counter
	Transitions     *prometheus.CounterVec
	CurrentState    *prometheus.GaugeVec
}

// NewMetrics creates and registers the kernel collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_total",
			Help:      "Total number of kernel frames executed",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent doing work in a frame, excluding pacing",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .0167, .025, .05, .1},
		}),
		Overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frame_overruns_total",
			Help:      "Frames whose work exceeded the frame period",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "decode_errors_total",
			Help:      "Incoming CIGI messages discarded because they failed to decode",
		}),
		RecvErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "recv_errors_total",
			Help:      "Transient network receive failures",
		}),
		SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "send_errors_total",
			Help:      "Failed outgoing message sends",
		}),
		DroppedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dropped_messages_total",
			Help:      "Incoming messages dropped because the receive queue was full",
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "messages_sent_total",
			Help:      "Outgoing CIGI messages sent to the Host",
		}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "state_transitions_total",
			Help:      "State machine transitions",
		}, []string{"from", "to"}),
		CurrentState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "state",
			Help:      "1 for the current system state, 0 otherwise",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.Frames,
		m.FrameDuration,
		m.Overruns,
		m.DecodeErrors,
		m.RecvErrors,
		m.SendErrors,
		m.DroppedMessages,
		m.MessagesSent,
		m.Transitions,
		m.CurrentState,
	)
	for _, s := range domain.AllStates() {
		m.CurrentState.WithLabelValues(s.String()).Set(0)
	}
	return m
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks that record transitions and the current state.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.Transitions.WithLabelValues(e.Peer.String(), e.State.String()).Inc()
			m.CurrentState.WithLabelValues(e.State.String()).Set(1)
		},
		OnStateLeave: func(_ context.Context, e *domain.StateEvent) {
			m.CurrentState.WithLabelValues(e.State.String()).Set(0)
		},
	}
}

// ChainHooks returns hooks that call each non-nil callback in order.
func ChainHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			for _, h := range hooks {
				if h.OnStateEnter != nil {
					h.OnStateEnter(ctx, e)
				}
			}
		},
		OnStateLeave: func(ctx context.Context, e *domain.StateEvent) {
			for _, h := range hooks {
				if h.OnStateLeave != nil {
					h.OnStateLeave(ctx, e)
				}
			}
		},
	}
}
