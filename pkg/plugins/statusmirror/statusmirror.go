// Package statusmirror publishes the IG status to a ports.StatusStore
// whenever it changes, so external tools can watch the IG without talking
// CIGI.
package statusmirror

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/igkernel/internal/runtime"
	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/ports"
)

// Name is the registration name of the plugin.
const Name = "statusmirror"

// Settings is the plugin's configuration block.
type Settings struct {
	// InstanceID keys the snapshot in the store. Defaults to the host name.
	InstanceID string `mapstructure:"instance_id"`
	// KeepOnExit leaves the last snapshot in the store after Quit.
	KeepOnExit bool `mapstructure:"keep_on_exit"`
	// RefreshFrames republishes an unchanged snapshot every N frames so it
	// outlives a store TTL. Zero publishes on change only.
	RefreshFrames uint32 `mapstructure:"refresh_frames"`
}

// Plugin writes a snapshot on every change of state, mode or database.
type Plugin struct {
	store    ports.StatusStore
	settings Settings
	logger   *slog.Logger
	bb       *blackboard.Blackboard

	loaded    *int8
	commanded *int8
	reported  *int8

	frame     uint32
	last      *domain.Status
	lastSaved uint32
}

// Option configures the plugin.
type Option func(*Plugin)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// New creates the plugin writing to store.
func New(store ports.StatusStore, settings Settings, opts ...Option) *Plugin {
	if settings.InstanceID == "" {
		settings.InstanceID, _ = os.Hostname()
	}
	p := &Plugin{
		store:    store,
		settings: settings,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return Name }

// InstanceID returns the key snapshots are stored under.
func (p *Plugin) InstanceID() string { return p.settings.InstanceID }

// UseBlackboard implements plugin.BlackboardUser.
func (p *Plugin) UseBlackboard(bb *blackboard.Blackboard) { p.bb = bb }

// Act implements plugin.Plugin. Store failures are logged, never returned.
func (p *Plugin) Act(ctx context.Context, state domain.SystemState, sc *domain.StateContext) error {
	if state == domain.StateBlackboardRetrieve && p.bb != nil {
		// Optional: a kernel that does not publish database numbers still gets mode snapshots.
		_, _ = blackboard.Get(p.bb, blackboard.KeyLoadedDatabaseNumber, &p.loaded, false)
		_, _ = blackboard.Get(p.bb, blackboard.KeyCommandedDatabaseNumber, &p.commanded, false)
		_, _ = blackboard.Get(p.bb, blackboard.KeyReportedDatabaseNumber, &p.reported, false)
	}

	cur := &domain.Status{
		State:                   state.String(),
		IGMode:                  runtime.Lookup(state).IGMode.String(),
		Frame:                   p.frame,
		CommandedIGMode:         sc.CommandedIGMode.String(),
		LoadedDatabaseNumber:    deref(p.loaded),
		ReportedDatabaseNumber:  deref(p.reported),
		CommandedDatabaseNumber: deref(p.commanded),
	}
	p.frame++

	diff := domain.Diff(p.last, cur)
	if diff == nil && !p.due(cur.Frame) {
		return nil
	}
	if err := p.store.Save(ctx, p.settings.InstanceID, cur); err != nil {
		p.logger.Warn("status publish failed", "instance", p.settings.InstanceID, "err", err)
		return nil
	}
	p.last = cur
	p.lastSaved = cur.Frame

	if diff != nil && p.logger.Enabled(ctx, slog.LevelDebug) {
		changes, _ := json.Marshal(diff)
		p.logger.Debug("status published", "instance", p.settings.InstanceID, "changes", string(changes))
	}
	return nil
}

func (p *Plugin) due(frame uint32) bool {
	return p.settings.RefreshFrames > 0 && frame-p.lastSaved >= p.settings.RefreshFrames
}

// Close implements plugin.Closer. It removes the snapshot unless KeepOnExit is set.
func (p *Plugin) Close(ctx context.Context) error {
	if p.settings.KeepOnExit {
		return nil
	}
	return p.store.Delete(ctx, p.settings.InstanceID)
}

func deref(v *int8) int8 {
	if v == nil {
		return 0
	}
	return *v
}
