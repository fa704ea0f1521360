package kernel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/observability"
)

const (
	// DefaultFrameRate is the target frame rate in Hz.
	DefaultFrameRate = 60
	// DefaultMaxQueuedMessages bounds the received-message FIFO.
	DefaultMaxQueuedMessages = 64
	// MaxDropsPerFrame is how many datagrams a frame reads and drops once
	// the receive queue is full.
	MaxDropsPerFrame = 64
	// MinRecvBufferSize is the smallest receive buffer accepted; it holds the
	// largest possible UDP payload.
	MinRecvBufferSize = 64 * 1024
	// SpinThreshold is the tail of the frame period spent busy-waiting
	// instead of sleeping, to absorb scheduler latency.
	SpinThreshold = time.Millisecond
)

// ProcessPolicy selects how many queued messages are processed per frame.
type ProcessPolicy int

const (
	// ProcessAll drains the whole receive queue every frame.
	ProcessAll ProcessPolicy = iota
	// ProcessOnePerFrame processes the oldest queued message only.
	ProcessOnePerFrame
)

func (p ProcessPolicy) String() string {
	switch p {
	case ProcessAll:
		return "all"
	case ProcessOnePerFrame:
		return "one_per_frame"
	default:
		return "unknown"
	}
}

// ParseProcessPolicy maps "all" and "one_per_frame" to a ProcessPolicy.
// An empty string selects ProcessAll.
func ParseProcessPolicy(s string) (ProcessPolicy, error) {
	switch s {
	case "", "all":
		return ProcessAll, nil
	case "one_per_frame":
		return ProcessOnePerFrame, nil
	default:
		return ProcessAll, fmt.Errorf("unknown process policy %q", s)
	}
}

// Option configures the Kernel.
type Option func(*Kernel)

// WithLogger sets the structured logger shared with the state machine,
// the plugin manager and the IG Control processor.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// WithMetrics sets the collectors the kernel reports to.
func WithMetrics(m *observability.Metrics) Option {
	return func(k *Kernel) {
		k.metrics = m
	}
}

// WithFrameRate sets the target rate in Hz. Zero disables pacing.
func WithFrameRate(hz float64) Option {
	return func(k *Kernel) {
		k.frameRate = hz
	}
}

// WithProcessPolicy selects one-per-frame or drain-all processing.
func WithProcessPolicy(p ProcessPolicy) Option {
	return func(k *Kernel) {
		k.policy = p
	}
}

// WithMaxQueuedMessages bounds the receive queue. Datagrams beyond it are dropped.
func WithMaxQueuedMessages(n int) Option {
	return func(k *Kernel) {
		k.maxQueued = n
	}
}

// WithRecvBufferSize sets the receive buffer size, never below MinRecvBufferSize.
func WithRecvBufferSize(n int) Option {
	return func(k *Kernel) {
		k.recvBufSize = n
	}
}

// WithDefaultDatabase sets the value published as the default database number.
func WithDefaultDatabase(n int8) Option {
	return func(k *Kernel) {
		k.defaultDB = n
	}
}

// WithLifecycleHooks registers state enter/leave callbacks in addition to
// the metrics hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(k *Kernel) {
		k.hooks = hooks
	}
}
