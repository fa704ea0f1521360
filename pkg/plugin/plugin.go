package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/domain"
)

// Plugin is a statically linked unit of IG behavior, invoked once per frame
// with the current SystemState.
type Plugin interface {
	Name() string
	Act(ctx context.Context, state domain.SystemState, sc *domain.StateContext) error
}

// BlackboardUser is implemented by plugins that post to or retrieve from the
// blackboard. UseBlackboard is called once, on registration.
type BlackboardUser interface {
	UseBlackboard(bb *blackboard.Blackboard)
}

// Closer is implemented by plugins that need an explicit teardown.
type Closer interface {
	Close(ctx context.Context) error
}

// Error wraps a failure returned by a plugin.
type Error struct {
	Plugin string
	State  domain.SystemState
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("plugin %q in state %s: %v", e.Plugin, e.State, e.Err)
}

// Unwrap provides compatibility with errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Manager holds the registered plugins and invokes them in registration order.
type Manager struct {
	bb      *blackboard.Blackboard
	plugins []Plugin
	logger  *slog.Logger
	closed  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a manager that hands bb to every BlackboardUser.
func NewManager(bb *blackboard.Blackboard, opts ...Option) *Manager {
	m := &Manager{bb: bb}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m
}

// Register appends p to the invocation list.
func (m *Manager) Register(p Plugin) {
	if u, ok := p.(BlackboardUser); ok {
		u.UseBlackboard(m.bb)
	}
	m.plugins = append(m.plugins, p)
	m.logger.Debug("plugin registered", domain.KeyPlugin, p.Name())
}

// Names returns the plugin names in invocation order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.Name()
	}
	return names
}

// Act invokes every plugin for state. The first error stops the round.
func (m *Manager) Act(ctx context.Context, state domain.SystemState, sc *domain.StateContext) error {
	for _, p := range m.plugins {
		if err := p.Act(ctx, state, sc); err != nil {
			return &Error{Plugin: p.Name(), State: state, Err: err}
		}
	}
	return nil
}

// Close tears plugins down in reverse registration order.
// Every Closer is called even if an earlier one fails; errors are joined.
// Calling Close again is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for i := len(m.plugins) - 1; i >= 0; i-- {
		c, ok := m.plugins[i].(Closer)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", m.plugins[i].Name(), err))
			continue
		}
		m.logger.Debug("plugin closed", domain.KeyPlugin, m.plugins[i].Name())
	}
	return errors.Join(errs...)
}
