// Package database implements the plugin that services database load
// requests commanded by the Host.
//
// While a load is in progress the reported database number is the negated
// commanded number, which tells the Host through Start-Of-Frame that the IG
// is still loading. Once the load finishes the loaded and reported numbers
// both take the commanded value and DatabaseLoadComplete is raised.
package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/igkernel/pkg/blackboard"
	"github.com/aretw0/igkernel/pkg/domain"
)

// Name is the registration name of the plugin.
const Name = "database"

// Settings is the plugin's configuration block.
type Settings struct {
	// LoadFrames is how many frames a load takes. Values below 1 mean 1.
	LoadFrames int `mapstructure:"load_frames"`
}

// Loader performs the actual load of a database. It is called once, on the
// first frame of a load.
type Loader func(ctx context.Context, number int8) error

// Plugin tracks the database numbers published on the blackboard.
type Plugin struct {
	settings Settings
	loader   Loader
	logger   *slog.Logger
	bb       *blackboard.Blackboard

	loaded    *int8
	commanded *int8
	reported  *int8
	def       *int8

	loading    bool
	target     int8
	framesLeft int
}

// Option configures the plugin.
type Option func(*Plugin)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithLoader sets the function that performs a load.
func WithLoader(l Loader) Option {
	return func(p *Plugin) {
		p.loader = l
	}
}

// New creates the plugin.
func New(settings Settings, opts ...Option) *Plugin {
	if settings.LoadFrames < 1 {
		settings.LoadFrames = 1
	}
	p := &Plugin{
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

// UseBlackboard implements plugin.BlackboardUser.
func (p *Plugin) UseBlackboard(bb *blackboard.Blackboard) { p.bb = bb }

// Act implements plugin.Plugin.
func (p *Plugin) Act(ctx context.Context, state domain.SystemState, sc *domain.StateContext) error {
	switch state {
	case domain.StateBlackboardRetrieve:
		return p.retrieve()
	case domain.StateConfigurationProcess:
		if *p.def != 0 {
			*p.loaded = *p.def
			*p.reported = *p.def
			p.logger.Info("default database selected", "database", *p.def)
		}
	case domain.StateDatabaseLoad:
		return p.load(ctx, sc)
	}
	return nil
}

func (p *Plugin) retrieve() error {
	if p.bb == nil {
		return fmt.Errorf("%s: no blackboard", Name)
	}
	for key, dst := range map[string]**int8{
		blackboard.KeyLoadedDatabaseNumber:    &p.loaded,
		blackboard.KeyCommandedDatabaseNumber: &p.commanded,
		blackboard.KeyReportedDatabaseNumber:  &p.reported,
		blackboard.KeyDefaultDatabaseNumber:   &p.def,
	} {
		if _, err := blackboard.Get(p.bb, key, dst, true); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) load(ctx context.Context, sc *domain.StateContext) error {
	if !p.loading {
		p.loading = true
		p.target = *p.commanded
		p.framesLeft = p.settings.LoadFrames
		*p.reported = -p.target
		p.logger.Info("database load started", "database", p.target, "frames", p.framesLeft)
		if p.loader != nil {
			if err := p.loader(ctx, p.target); err != nil {
				return fmt.Errorf("load database %d: %w", p.target, err)
			}
		}
	}

	p.framesLeft--
	if p.framesLeft > 0 {
		return nil
	}

	p.loading = false
	*p.loaded = p.target
	*p.reported = p.target
	sc.DatabaseLoadComplete = true
	p.logger.Info("database load complete", "database", p.target)
	return nil
}
