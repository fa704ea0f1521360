package igkernel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	httpAdapter "github.com/aretw0/igkernel/pkg/adapters/http"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/kernel"
	"github.com/aretw0/igkernel/pkg/observability"
	"github.com/aretw0/igkernel/pkg/plugin"
	"github.com/aretw0/igkernel/pkg/plugins/database"
	"github.com/aretw0/igkernel/pkg/plugins/packetstats"
	"github.com/aretw0/igkernel/pkg/plugins/signals"
	"github.com/aretw0/igkernel/pkg/plugins/statusmirror"
	"github.com/aretw0/igkernel/pkg/ports"
)

// IG is an assembled Image Generator: a kernel plus the built-in plugins.
type IG struct {
	kernel  *kernel.Kernel
	metrics *observability.Metrics
	logger  *slog.Logger

	kernelOpts  []kernel.Option
	signals     bool
	packetStats bool
	database    *database.Settings
	loader      database.Loader
	store       ports.StatusStore
	mirror      statusmirror.Settings
	extra       []plugin.Plugin
}

// Option configures the IG.
type Option func(*IG)

// WithLogger sets a custom structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(ig *IG) {
		ig.logger = logger
	}
}

// WithKernelOptions passes options through to the kernel.
func WithKernelOptions(opts ...kernel.Option) Option {
	return func(ig *IG) {
		ig.kernelOpts = append(ig.kernelOpts, opts...)
	}
}

// WithSignals enables or disables the OS signal plugin (enabled by default).
func WithSignals(enabled bool) Option {
	return func(ig *IG) {
		ig.signals = enabled
	}
}

// WithPacketStats enables or disables per-packet counters (enabled by default).
func WithPacketStats(enabled bool) Option {
	return func(ig *IG) {
		ig.packetStats = enabled
	}
}

// WithDatabase enables the database plugin with the given settings.
func WithDatabase(settings database.Settings) Option {
	return func(ig *IG) {
		ig.database = &settings
	}
}

// WithDatabaseLoader sets the function the database plugin calls to load.
func WithDatabaseLoader(l database.Loader) Option {
	return func(ig *IG) {
		ig.loader = l
	}
}

// WithStatusStore publishes status snapshots to store.
func WithStatusStore(store ports.StatusStore, settings statusmirror.Settings) Option {
	return func(ig *IG) {
		ig.store = store
		ig.mirror = settings
	}
}

// WithPlugins registers additional plugins after the built-in ones.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(ig *IG) {
		ig.extra = append(ig.extra, plugins...)
	}
}

// New assembles an IG on transport. Built-in plugins are registered in a
// fixed order: signals, database, packet stats, status mirror, then extras.
func New(transport ports.Transport, opts ...Option) (*IG, error) {
	ig := &IG{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:     observability.NewMetrics(),
		signals:     true,
		packetStats: true,
	}
	for _, opt := range opts {
		opt(ig)
	}

	kopts := append([]kernel.Option{
		kernel.WithLogger(ig.logger),
		kernel.WithMetrics(ig.metrics),
	}, ig.kernelOpts...)
	k, err := kernel.New(transport, kopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kernel: %w", err)
	}
	ig.kernel = k

	if ig.signals {
		k.Register(signals.New(signals.WithLogger(ig.logger.With(domain.KeyPlugin, signals.Name))))
	}
	if ig.database != nil {
		dbOpts := []database.Option{database.WithLogger(ig.logger.With(domain.KeyPlugin, database.Name))}
		if ig.loader != nil {
			dbOpts = append(dbOpts, database.WithLoader(ig.loader))
		}
		k.Register(database.New(*ig.database, dbOpts...))
	}
	if ig.packetStats {
		p, err := packetstats.New(ig.metrics.Registry())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s plugin: %w", packetstats.Name, err)
		}
		k.Register(p)
	}
	if ig.store != nil {
		k.Register(statusmirror.New(ig.store, ig.mirror, statusmirror.WithLogger(ig.logger.With(domain.KeyPlugin, statusmirror.Name))))
	}
	for _, p := range ig.extra {
		k.Register(p)
	}
	return ig, nil
}

// Run drives frames until Quit completes. See kernel.Kernel.Run.
func (ig *IG) Run(ctx context.Context) error {
	return ig.kernel.Run(ctx)
}

// Kernel returns the underlying frame driver.
func (ig *IG) Kernel() *kernel.Kernel { return ig.kernel }

// Metrics returns the IG's collectors.
func (ig *IG) Metrics() *observability.Metrics { return ig.metrics }

// Status returns the latest status snapshot.
func (ig *IG) Status() domain.Status { return ig.kernel.Status() }

// Handler serves /metrics and /healthz for this IG.
func (ig *IG) Handler() http.Handler {
	return httpAdapter.NewHandler(ig.metrics.Registry(), ig)
}
