package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/domain"
)

// PluginRunner is the part of the plugin manager the state machine drives.
type PluginRunner interface {
	Act(ctx context.Context, state domain.SystemState, sc *domain.StateContext) error
	Close(ctx context.Context) error
}

// Engine is the kernel state machine. It owns the StateContext, decides the
// current SystemState once per Act and delegates per-state work to plugins.
type Engine struct {
	sc      *domain.StateContext
	plugins PluginRunner
	bb      *blackboard.Blackboard
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	current    domain.SystemState
	started    bool
	shouldExit bool
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers state enter/leave callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithBlackboard gives the engine the blackboard to lock once BlackboardPost completes.
func WithBlackboard(bb *blackboard.Blackboard) EngineOption {
	return func(e *Engine) {
		e.bb = bb
	}
}

// NewEngine creates a state machine that has not entered any state yet.
func NewEngine(sc *domain.StateContext, plugins PluginRunner, opts ...EngineOption) *Engine {
	if sc == nil {
		sc = domain.NewStateContext()
	}
	e := &Engine{
		sc:      sc,
		plugins: plugins,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Act advances the state machine by one frame.
//
// The first call enters Init. Every later call evaluates the transition
// table before running the action of the resulting state. Calling Act after
// Quit has run returns domain.ErrInvalidState.
func (e *Engine) Act(ctx context.Context) error {
	var next domain.SystemState
	if !e.started {
		e.started = true
		next = domain.StateInit
	} else {
		if e.current == domain.StateNone {
			return fmt.Errorf("%w: act called with no current state", domain.ErrInvalidState)
		}
		var sc domain.StateContext
		next, sc = Next(e.current, *e.sc)
		*e.sc = sc
		if next == domain.StateNone {
			e.transition(ctx, domain.StateNone)
			return fmt.Errorf("%w: act called after %s", domain.ErrInvalidState, domain.StateQuit)
		}
	}

	if next != e.current {
		e.transition(ctx, next)
	}
	return e.runAction(ctx)
}

func (e *Engine) transition(ctx context.Context, next domain.SystemState) {
	prev := e.current
	if prev != domain.StateNone && e.hooks.OnStateLeave != nil {
		e.hooks.OnStateLeave(ctx, &domain.StateEvent{
			Timestamp: time.Now(),
			Type:      domain.EventStateLeave,
			State:     prev,
			Peer:      next,
		})
	}

	e.current = next
	e.logger.Info("state transition", domain.KeyFrom, prev.String(), domain.KeyTo, next.String())

	if next != domain.StateNone && e.hooks.OnStateEnter != nil {
		e.hooks.OnStateEnter(ctx, &domain.StateEvent{
			Timestamp: time.Now(),
			Type:      domain.EventStateEnter,
			State:     next,
			Peer:      prev,
		})
	}
}

func (e *Engine) runAction(ctx context.Context) error {
	if e.current == domain.StateQuit {
		if e.plugins != nil {
			if err := e.plugins.Close(ctx); err != nil {
				e.logger.Warn("plugin teardown failed", "err", err)
			}
		}
		e.shouldExit = true
		return nil
	}

	if e.plugins != nil {
		if err := e.plugins.Act(ctx, e.current, e.sc); err != nil {
			return fmt.Errorf("state %s: %w", e.current, err)
		}
	}

	if e.current == domain.StateBlackboardPost && e.bb != nil {
		e.bb.Lock()
		e.logger.Debug("blackboard locked", "keys", len(e.bb.Keys()))
	}
	return nil
}

// State returns the current state (StateNone before the first Act and after Quit).
func (e *Engine) State() domain.SystemState { return e.current }

// Info returns the static behavior of the current state.
func (e *Engine) Info() Info { return Lookup(e.current) }

// IGMode returns the mode to report in Start-Of-Frame.
func (e *Engine) IGMode() domain.IGMode { return Lookup(e.current).IGMode }

// ShouldSendSOF reports whether a Start-Of-Frame goes out this frame.
func (e *Engine) ShouldSendSOF() bool { return Lookup(e.current).ShouldSendSOF }

// ShouldIgnoreNonIGCtrl reports whether only IG Control packets may be decoded.
func (e *Engine) ShouldIgnoreNonIGCtrl() bool { return Lookup(e.current).ShouldIgnoreNonIGCtrl }

// ShouldExit becomes true once Quit's action has run.
func (e *Engine) ShouldExit() bool { return e.shouldExit }

// Context returns the StateContext shared with plugins and the IG Control processor.
func (e *Engine) Context() *domain.StateContext { return e.sc }
