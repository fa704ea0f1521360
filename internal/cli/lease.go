package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/igkernel"
	"github.com/aretw0/igkernel/internal/config"
	"github.com/aretw0/igkernel/pkg/adapters/file"
	redisAdapter "github.com/aretw0/igkernel/pkg/adapters/redis"
	"github.com/aretw0/igkernel/pkg/domain"
	"github.com/aretw0/igkernel/pkg/plugins/statusmirror"
	"github.com/aretw0/igkernel/pkg/ports"
)

// leaseTimeout bounds how long startup waits for another IG to give up the listen port.
const leaseTimeout = 5 * time.Second

// lease is the externally visible part of a run: the instance lock and the
// status store. Without Redis there is no lock and status goes to
// status_dir, if set.
type lease struct {
	options []igkernel.Option
	unlock  ports.UnlockFunc
	store   *redisAdapter.Store
	logger  *slog.Logger
}

// setupLease connects to Redis when configured, takes the lock that keeps
// two IGs off the same listen port and wires status publication.
func setupLease(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*lease, error) {
	l := &lease{logger: logger}
	if cfg.Redis.Address == "" {
		if cfg.StatusDir != "" && cfg.PluginEnabled(statusmirror.Name, true) {
			settings, err := mirrorSettings(cfg, 0)
			if err != nil {
				return nil, err
			}
			l.options = append(l.options, igkernel.WithStatusStore(file.New(cfg.StatusDir), settings))
		}
		return l, nil
	}

	store := redisAdapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
		redisAdapter.WithPrefix(cfg.Redis.Prefix),
		redisAdapter.WithTTL(cfg.Redis.TTL),
	)
	locker := redisAdapter.NewLocker(store.Client(), cfg.Redis.Prefix, redisAdapter.WithKeepAlive())

	lockCtx, cancel := context.WithTimeout(ctx, leaseTimeout)
	defer cancel()
	unlock, err := locker.Lock(lockCtx, fmt.Sprintf("listen-%d", cfg.Listen.Port), cfg.Redis.TTL)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen port %d is leased by another IG: %w", cfg.Listen.Port, err)
	}
	l.unlock = unlock
	l.store = store

	if cfg.PluginEnabled(statusmirror.Name, true) {
		settings, err := mirrorSettings(cfg, cfg.Redis.TTL)
		if err != nil {
			l.release()
			return nil, err
		}
		l.options = append(l.options, igkernel.WithStatusStore(store, settings))
	}
	logger.Info("instance lease acquired", "redis", cfg.Redis.Address, "listen_port", cfg.Listen.Port)
	return l, nil
}

// mirrorSettings decodes the status mirror settings. A positive ttl
// defaults RefreshFrames so snapshots outlive it.
func mirrorSettings(cfg *config.Config, ttl time.Duration) (statusmirror.Settings, error) {
	var settings statusmirror.Settings
	if err := cfg.DecodePluginSettings(statusmirror.Name, &settings); err != nil {
		return settings, err
	}
	if settings.RefreshFrames == 0 && ttl > 0 {
		settings.RefreshFrames = refreshFrames(cfg.FrameRateHz, ttl)
	}
	return settings, nil
}

// refreshFrames republishes at half the snapshot TTL.
func refreshFrames(hz float64, ttl time.Duration) uint32 {
	if hz <= 0 {
		hz = 1000
	}
	n := uint32(hz * ttl.Seconds() / 2)
	if n < 1 {
		n = 1
	}
	return n
}

func (l *lease) release() {
	if l.unlock != nil {
		if err := l.unlock(context.Background()); err != nil {
			l.logger.Warn("failed to release instance lease", "err", err)
		}
		l.unlock = nil
	}
	if l.store != nil {
		_ = l.store.Close()
		l.store = nil
	}
}

// ErrNoStatusStore is returned when the configuration publishes status nowhere.
var ErrNoStatusStore = errors.New("no status store configured (set redis.address or status_dir)")

// LoadStatus reads the snapshot an IG published under instanceID.
func LoadStatus(ctx context.Context, opts RunOptions, instanceID string) (*domain.Status, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.Redis.Address != "":
		store := redisAdapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, redisAdapter.WithPrefix(cfg.Redis.Prefix))
		defer store.Close()
		return store.Load(ctx, instanceID)
	case cfg.StatusDir != "":
		return file.New(cfg.StatusDir).Load(ctx, instanceID)
	default:
		return nil, ErrNoStatusStore
	}
}
