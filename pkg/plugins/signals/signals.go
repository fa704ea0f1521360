// Package signals turns operating system signals into user requests.
//
// SIGINT and SIGTERM request a quit. The debug signal (SIGUSR1 on Unix)
// toggles the debug request. Signals arrive on their own goroutine and are
// only recorded there; the StateContext is updated during Act, on the kernel
// goroutine.
package signals

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/igkernel/pkg/domain"
)

// Name is the registration name of the plugin.
const Name = "signals"

// Plugin listens for quit and debug signals.
type Plugin struct {
	logger      *slog.Logger
	debugSignal os.Signal

	quit  atomic.Bool
	debug atomic.Bool

	ch   chan os.Signal
	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures the plugin.
type Option func(*Plugin)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithDebugSignal overrides the signal that toggles the debug request.
// A nil signal disables it.
func WithDebugSignal(sig os.Signal) Option {
	return func(p *Plugin) {
		p.debugSignal = sig
	}
}

// New creates the plugin. It starts listening on its first Act.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		debugSignal: defaultDebugSignal,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return Name }

// Act implements plugin.Plugin.
func (p *Plugin) Act(_ context.Context, state domain.SystemState, sc *domain.StateContext) error {
	if state == domain.StateInit {
		p.start()
	}
	if p.quit.Load() {
		sc.UserRequestedQuit = true
	}
	sc.UserRequestedDebug = p.debug.Load()
	return nil
}

func (p *Plugin) start() {
	if p.ch != nil {
		return
	}
	sigs := []os.Signal{os.Interrupt, syscall.SIGTERM}
	if p.debugSignal != nil {
		sigs = append(sigs, p.debugSignal)
	}

	p.ch = make(chan os.Signal, 1)
	p.done = make(chan struct{})
	signal.Notify(p.ch, sigs...)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case sig := <-p.ch:
				p.handle(sig)
			case <-p.done:
				return
			}
		}
	}()
}

func (p *Plugin) handle(sig os.Signal) {
	if p.debugSignal != nil && sig == p.debugSignal {
		on := !p.debug.Load()
		p.debug.Store(on)
		p.logger.Info("debug request toggled", "signal", sig.String(), "debug", on)
		return
	}
	p.quit.Store(true)
	p.logger.Info("quit requested", "signal", sig.String())
}

// Close implements plugin.Closer. It stops signal delivery and waits for the
// listener goroutine.
func (p *Plugin) Close(context.Context) error {
	if p.ch == nil {
		return nil
	}
	signal.Stop(p.ch)
	close(p.done)
	p.wg.Wait()
	p.ch = nil
	return nil
}
