// Package batchlock ensures only one import or purge runs at a time.
//
// LocalLocker serializes batches inside one process. RedisLocker extends
// that across processes sharing a Redis instance, using bsm/redislock.
package batchlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrBusy is returned when another batch holds the lock.
var ErrBusy = errors.New("another batch is already running")

// Locker hands out the single batch slot. Acquire never blocks waiting for
// the holder; it fails with ErrBusy instead.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) Acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.mu.TryLock() {
		return nil, ErrBusy
	}
	var once sync.Once
	return func() { once.Do(l.mu.Unlock) }, nil
}

const DefaultKey = "lock:weengz-air:batch"

// DefaultTTL applies when no positive TTL is configured.
const DefaultTTL = 30 * time.Second

// RedisLocker holds the batch key for ttl and extends it every ttl/2 until
// the batch releases it, so long imports keep the slot.
type RedisLocker struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewRedisLocker connects to addr and checks it responds.
func NewRedisLocker(ctx context.Context, addr string, ttl time.Duration, log logrus.FieldLogger) (*RedisLocker, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisLockerFromClient(client, ttl, log), client, nil
}

func NewRedisLockerFromClient(client redislock.RedisClient, ttl time.Duration, log logrus.FieldLogger) *RedisLocker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{
		locker: redislock.New(client),
		key:    DefaultKey,
		ttl:    ttl,
		log:    log.WithField("key", DefaultKey),
	}
}

func (r *RedisLocker) Acquire(ctx context.Context) (func(), error) {
	lock, err := r.locker.Obtain(ctx, r.key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain batch lock: %w", err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(lock, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			// The request context may already be done by the time we release.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.log.WithError(err).Warn("Failed to release batch lock")
			}
		})
	}, nil
}

// keepAlive refreshes the lock until stop is closed. It gives up once the
// key is no longer ours.
func (r *RedisLocker) keepAlive(lock *redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := r.ttl / 2
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := lock.Refresh(ctx, r.ttl, nil)
			cancel()
			if errors.Is(err, redislock.ErrNotObtained) {
				r.log.Error("Batch lock was lost before the batch finished")
				return
			}
			if err != nil {
				r.log.WithError(err).Warn("Failed to refresh batch lock")
			}
		}
	}
}
