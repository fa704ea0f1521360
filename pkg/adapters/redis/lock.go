package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/igkernel/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// unlockScript deletes the key only if we still own it.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// extendScript refreshes the TTL only if we still own the key.
var extendScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client    *backend.Client
	prefix    string
	interval  time.Duration
	keepAlive bool
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithKeepAlive renews held locks at half their TTL until they are released,
// so a lease lasts as long as the process while a crashed holder still
// expires.
func WithKeepAlive() LockerOption {
	return func(l *Locker) {
		l.keepAlive = true
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client:   client,
		prefix:   prefix,
		interval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX,
// polling until it succeeds or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	val := fmt.Sprintf("%d", time.Now().UnixNano())

	acquire := func() (bool, error) {
		ok, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrLockAcquire, err)
		}
		return ok, nil
	}
	release := func(ctx context.Context) error {
		return unlockScript.Run(ctx, l.client, []string{lockKey}, val).Err()
	}

	ok, err := acquire()
	if err != nil {
		return nil, err
	}
	if ok {
		return l.hold(lockKey, val, ttl, release), nil
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			ok, err := acquire()
			if err != nil {
				return nil, err
			}
			if ok {
				return l.hold(lockKey, val, ttl, release), nil
			}
		}
	}
}

// hold starts the keep-alive loop if enabled and returns the UnlockFunc that stops it.
func (l *Locker) hold(lockKey, val string, ttl time.Duration, release ports.UnlockFunc) ports.UnlockFunc {
	if !l.keepAlive || ttl <= 0 {
		return release
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// A failed renewal is retried on the next tick; the lock
				// expires on its own if Redis stays unreachable.
				_ = extendScript.Run(context.Background(), l.client, []string{lockKey}, val, ttl.Milliseconds()).Err()
			}
		}
	}()

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			<-done
		})
		return release(ctx)
	}
}
