package kernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/igkernel/internal/runtime"
	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/cigi"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/igctrl"
	"github.com/aretw0/igkernel/pkg/observability"
	"github.com/aretw0/igkernel/pkg/plugin"
	"github.com/aretw0/igkernel/pkg/ports"
)

// timestampTick is the CIGI timestamp resolution.
const timestampTick = 10 * time.Microsecond

// Kernel owns the transport side of the IG: receive buffer, sessions,
// outgoing message and the frame loop.
type Kernel struct {
	transport ports.Transport
	engine    *runtime.Engine
	plugins   *plugin.Manager
	bb        *blackboard.Blackboard
	sc        *domain.StateContext
	igctrl    *igctrl.Processor

	out      *cigi.Outgoing
	internal *cigi.Session
	normal   *cigi.Session

	// Published on the blackboard by address.
	loadedDB    int8
	commandedDB int8
	reportedDB  int8
	defaultDB   int8

	queue  [][]byte
	buf    []byte
	frame  uint32
	epoch  time.Time
	status atomic.Pointer[domain.Status]

	logger      *slog.Logger
	metrics     *observability.Metrics
	hooks       domain.LifecycleHooks
	frameRate   float64
	policy      ProcessPolicy
	maxQueued   int
	recvBufSize int
}

// New wires a kernel around transport. Plugins are added with Register
// before the first Step.
func New(transport ports.Transport, opts ...Option) (*Kernel, error) {
	k := &Kernel{
		transport:   transport,
		sc:          domain.NewStateContext(),
		bb:          blackboard.New(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		frameRate:   DefaultFrameRate,
		policy:      ProcessAll,
		maxQueued:   DefaultMaxQueuedMessages,
		recvBufSize: MinRecvBufferSize,
		epoch:       time.Now(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.metrics == nil {
		k.metrics = observability.NewMetrics()
	}
	if k.recvBufSize < MinRecvBufferSize {
		k.recvBufSize = MinRecvBufferSize
	}
	if k.maxQueued <= 0 {
		k.maxQueued = DefaultMaxQueuedMessages
	}
	k.buf = make([]byte, k.recvBufSize)
	k.reportedDB = k.defaultDB

	k.out = cigi.NewOutgoing(0)
	k.out.BeginMsg()
	k.internal = cigi.NewSession(k.out)
	k.normal = cigi.NewSession(k.out)

	k.igctrl = igctrl.New(k.sc, &k.commandedDB, igctrl.WithLogger(k.logger))
	k.igctrl.Register(k.internal)
	k.igctrl.Register(k.normal)

	if err := k.post(); err != nil {
		return nil, err
	}

	k.plugins = plugin.NewManager(k.bb, plugin.WithLogger(k.logger))
	k.engine = runtime.NewEngine(k.sc, k.plugins,
		runtime.WithLogger(k.logger),
		runtime.WithBlackboard(k.bb),
		runtime.WithLifecycleHooks(observability.ChainHooks(k.metrics.Hooks(), k.hooks)),
	)
	k.publishStatus()
	return k, nil
}

func (k *Kernel) post() error {
	return errors.Join(
		blackboard.Put(k.bb, blackboard.KeyOutgoingMessage, k.out),
		blackboard.Put(k.bb, blackboard.KeyIncomingMessage, k.normal.Incoming),
		blackboard.Put(k.bb, blackboard.KeyStateContext, k.sc),
		blackboard.Put(k.bb, blackboard.KeyIGControlProcessor, k.igctrl),
		blackboard.Put(k.bb, blackboard.KeyLoadedDatabaseNumber, &k.loadedDB),
		blackboard.Put(k.bb, blackboard.KeyCommandedDatabaseNumber, &k.commandedDB),
		blackboard.Put(k.bb, blackboard.KeyReportedDatabaseNumber, &k.reportedDB),
		blackboard.Put(k.bb, blackboard.KeyDefaultDatabaseNumber, &k.defaultDB),
	)
}

// Register adds a plugin. Plugins act in registration order.
func (k *Kernel) Register(p plugin.Plugin) {
	k.plugins.Register(p)
}

// Blackboard returns the kernel's blackboard.
func (k *Kernel) Blackboard() *blackboard.Blackboard { return k.bb }

// Context returns the StateContext shared with plugins.
func (k *Kernel) Context() *domain.StateContext { return k.sc }

// State returns the current system state.
func (k *Kernel) State() domain.SystemState { return k.engine.State() }

// Frame returns the number of frames executed, wrapping at 2^32.
func (k *Kernel) Frame() uint32 { return k.frame }

// ShouldExit reports whether Quit has completed.
func (k *Kernel) ShouldExit() bool { return k.engine.ShouldExit() }

// Status returns the snapshot taken at the end of the last frame.
// It is safe to call from any goroutine.
func (k *Kernel) Status() domain.Status { return *k.status.Load() }

// Step executes one frame without pacing.
func (k *Kernel) Step(ctx context.Context) error {
	start := time.Now()

	k.receive()

	// The session is fixed for the whole frame so a transition during Act
	// takes effect at the next frame boundary.
	session := k.normal
	if k.engine.ShouldIgnoreNonIGCtrl() {
		session = k.internal
	}
	k.process(session)

	if err := k.engine.Act(ctx); err != nil {
		return err
	}

	if k.engine.ShouldSendSOF() {
		if err := k.out.SetFrameHeader(k.startOfFrame()); err != nil {
			k.logger.Warn("failed to place start of frame", "err", err)
		}
	}
	k.flush()

	k.frame++
	k.publishStatus()
	k.metrics.Frames.Inc()
	k.metrics.FrameDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Run steps frames at the configured rate until Quit completes.
// Cancelling ctx requests a quit, so the state machine still passes through
// Shutdown and Quit before Run returns.
func (k *Kernel) Run(ctx context.Context) error {
	var period time.Duration
	if k.frameRate > 0 {
		period = time.Duration(float64(time.Second) / k.frameRate)
	}
	k.logger.Info("kernel started",
		"frame_rate_hz", k.frameRate,
		"process_policy", k.policy.String(),
		"plugins", k.plugins.Names(),
	)

	stepCtx := ctx
	deadline := time.Now()
	for !k.engine.ShouldExit() {
		// Plugins still need a live context for Shutdown and Quit.
		if stepCtx.Err() != nil {
			k.logger.Info("quit requested", "reason", context.Cause(ctx))
			k.sc.UserRequestedQuit = true
			stepCtx = context.WithoutCancel(ctx)
		}

		if err := k.Step(stepCtx); err != nil {
			return fmt.Errorf("frame %d: %w", k.frame, err)
		}

		if period > 0 {
			deadline = k.pace(deadline.Add(period))
		}
	}
	k.logger.Info("kernel stopped", domain.KeyFrame, k.frame)
	return nil
}

// pace waits until deadline and returns the next frame's start.
// An overrun resynchronizes to now instead of trying to catch up.
func (k *Kernel) pace(deadline time.Time) time.Time {
	now := time.Now()
	if now.After(deadline) {
		k.metrics.Overruns.Inc()
		return now
	}
	if d := deadline.Sub(now) - SpinThreshold; d > 0 {
		time.Sleep(d)
	}
	for time.Now().Before(deadline) {
	}
	return deadline
}

// receive reads at most maxQueued+MaxDropsPerFrame datagrams so a Host
// sending faster than the frame rate cannot hold the frame in this loop.
// Anything beyond that stays in the transport for the next frame.
func (k *Kernel) receive() {
	dropped := 0
	for {
		if len(k.queue) >= k.maxQueued && dropped >= MaxDropsPerFrame {
			k.logger.Debug("receive budget exhausted, leaving messages for next frame", "queued", len(k.queue))
			return
		}
		n, err := k.transport.Recv(k.buf)
		if errors.Is(err, ports.ErrNoData) {
			return
		}
		if err != nil || n <= 0 {
			k.logger.Warn("receive failed", domain.KeyBytes, n, "err", err)
			k.metrics.RecvErrors.Inc()
			return
		}
		if len(k.queue) >= k.maxQueued {
			k.logger.Warn("receive queue full, dropping message", domain.KeyBytes, n, "queued", len(k.queue))
			k.metrics.DroppedMessages.Inc()
			dropped++
			continue
		}
		k.queue = append(k.queue, append([]byte(nil), k.buf[:n]...))
	}
}

func (k *Kernel) process(session *cigi.Session) {
	count := len(k.queue)
	if k.policy == ProcessOnePerFrame && count > 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		msg := k.queue[i]
		_, err := session.Incoming.ProcessMessage(msg)
		switch {
		case errors.Is(err, cigi.ErrMalformed):
			k.metrics.DecodeErrors.Inc()
			k.logger.Warn("discarding incoming message",
				domain.KeyBytes, len(msg),
				domain.KeyState, k.engine.State().String(),
				"err", err,
			)
		case err != nil:
			// Decoded and dispatched; only some handlers failed.
			k.logger.Warn("packet handler failed",
				domain.KeyBytes, len(msg),
				domain.KeyState, k.engine.State().String(),
				"err", err,
			)
		}
		k.queue[i] = nil
	}
	k.queue = k.queue[count:]
}

func (k *Kernel) startOfFrame() *cigi.StartOfFrame {
	return &cigi.StartOfFrame{
		MajorVersion:   cigi.MajorVersion,
		MinorVersion:   cigi.MinorVersion,
		DatabaseNumber: k.reportedDB,
		IGMode:         k.engine.IGMode(),
		TimestampValid: true,
		IGFrame:        k.frame,
		Timestamp:      uint32(time.Since(k.epoch) / timestampTick),
		LastHostFrame:  k.igctrl.LastHostFrame(),
	}
}

func (k *Kernel) flush() {
	defer k.out.BeginMsg()

	msg := k.out.LockMsg()
	if msg == nil {
		return
	}
	if _, err := k.transport.Send(msg); err != nil {
		k.logger.Warn("send failed", domain.KeyBytes, len(msg), "err", err)
		k.metrics.SendErrors.Inc()
		return
	}
	k.metrics.MessagesSent.Inc()
}

func (k *Kernel) publishStatus() {
	k.status.Store(&domain.Status{
		State:                   k.engine.State().String(),
		IGMode:                  k.engine.IGMode().String(),
		Frame:                   k.frame,
		CommandedIGMode:         k.sc.CommandedIGMode.String(),
		LoadedDatabaseNumber:    k.loadedDB,
		ReportedDatabaseNumber:  k.reportedDB,
		CommandedDatabaseNumber: k.commandedDB,
	})
}
