package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/igkernel"
	"github.com/aretw0/igkernel/internal/config"
	"github.com/aretw0/igkernel/internal/logging"
	"github.com/aretw0/igkernel/internal/presentation/tui"
	httpAdapter "github.com/aretw0/igkernel/pkg/adapters/http"
	"github.com/aretw0/igkernel/pkg/adapters/udp"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/kernel"
	"github.com/aretw0/igkernel/pkg/plugins/database"
	"github.com/aretw0/igkernel/pkg/plugins/packetstats"
	"github.com/aretw0/igkernel/pkg/plugins/signals"
)

// ErrTransport is returned when the CIGI sockets cannot be opened.
var ErrTransport = errors.New("network transport unavailable")

// shutdownTimeout bounds the metrics server drain after the kernel exits.
const shutdownTimeout = 5 * time.Second

// RunOptions contains the command-line overrides for the run command.
// Zero values leave the configuration file (or its defaults) untouched.
type RunOptions struct {
	ConfigPath    string
	HostAddress   string
	HostPort      int
	ListenAddress string
	ListenPort    int
	FrameRate     float64
	Policy        string
	LogLevel      string
	MetricsAddr   string
	NoBanner      bool
}

// LoadConfig reads the configuration, applies the overrides and validates the result.
func LoadConfig(opts RunOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.HostAddress != "" {
		cfg.Host.Address = opts.HostAddress
	}
	if opts.HostPort != 0 {
		cfg.Host.Port = opts.HostPort
	}
	if opts.ListenAddress != "" {
		cfg.Listen.Address = opts.ListenAddress
	}
	if opts.ListenPort != 0 {
		cfg.Listen.Port = opts.ListenPort
	}
	if opts.FrameRate != 0 {
		cfg.FrameRateHz = opts.FrameRate
	}
	if opts.Policy != "" {
		cfg.ProcessPolicy = opts.Policy
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Address = opts.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs an Image Generator until it quits or ctx is cancelled.
func Execute(ctx context.Context, opts RunOptions) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg)
	if err != nil {
		return err
	}
	if !opts.NoBanner && cfg.Log.Format != logging.FormatJSON {
		tui.PrintBanner(os.Stderr, igkernel.Version)
	}

	transport, err := udp.Open(cfg.Listen.Address, cfg.Listen.Port, cfg.Host.Address, cfg.Host.Port)
	if err != nil {
		logger.Error("failed to open network transport", "listen", cfg.Listen.String(), "host", cfg.Host.String(), "err", err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer transport.Close()

	igOpts, err := pluginOptions(cfg, logger)
	if err != nil {
		return err
	}

	lease, err := setupLease(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer lease.release()
	igOpts = append(igOpts, lease.options...)

	ig, err := igkernel.New(transport, igOpts...)
	if err != nil {
		return err
	}

	if cfg.Metrics.Address != "" {
		srv := httpAdapter.NewServer(cfg.Metrics.Address, ig.Handler(), httpAdapter.WithLogger(logger))
		if _, err := srv.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", "err", err)
			}
		}()
	}

	if !cfg.PluginEnabled(signals.Name, true) {
		// Without the plugin, SIGINT and SIGTERM still end the run through ctx.
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	logger.Info("image generator starting",
		"version", igkernel.Version,
		"listen", transport.LocalAddr().String(),
		"host", cfg.Host.String(),
		"frame_rate_hz", cfg.FrameRateHz,
	)
	if err := ig.Run(ctx); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			logger.Error("state machine driven past quit", "err", err)
		}
		return err
	}
	logger.Info("image generator stopped", "frames", ig.Kernel().Frame())
	return nil
}

// pluginOptions translates the configuration into IG options.
func pluginOptions(cfg *config.Config, logger *slog.Logger) ([]igkernel.Option, error) {
	policy, err := kernel.ParseProcessPolicy(cfg.ProcessPolicy)
	if err != nil {
		return nil, err
	}
	opts := []igkernel.Option{
		igkernel.WithLogger(logger),
		igkernel.WithKernelOptions(
			kernel.WithFrameRate(cfg.FrameRateHz),
			kernel.WithProcessPolicy(policy),
			kernel.WithMaxQueuedMessages(cfg.MaxQueuedMessages),
			kernel.WithRecvBufferSize(cfg.RecvBufferSize),
			kernel.WithDefaultDatabase(cfg.Database.Default),
		),
		igkernel.WithSignals(cfg.PluginEnabled(signals.Name, true)),
		igkernel.WithPacketStats(cfg.PluginEnabled(packetstats.Name, true)),
	}

	if cfg.PluginEnabled(database.Name, true) {
		var settings database.Settings
		if err := cfg.DecodePluginSettings(database.Name, &settings); err != nil {
			return nil, err
		}
		opts = append(opts, igkernel.WithDatabase(settings))
	}
	return opts, nil
}

func createLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(level, cfg.Log.Format)
}
