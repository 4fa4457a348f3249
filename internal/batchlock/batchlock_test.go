package batchlock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SingleHolder(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	require.NoError(t, err)

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	release()

	release2, err := l.Acquire(ctx)
	require.NoError(t, err)
	release2()
}

func TestLocalLocker_ReleaseIsIdempotent(t *testing.T) {
	l := NewLocalLocker()

	release, err := l.Acquire(context.Background())
	require.NoError(t, err)

	release()
	assert.NotPanics(t, release)
}

func TestLocalLocker_CancelledContext(t *testing.T) {
	l := NewLocalLocker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalLocker_Concurrent(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	hold, err := l.Acquire(ctx)
	require.NoError(t, err)
	defer hold()

	var wg sync.WaitGroup
	var mu sync.Mutex
	busy := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(ctx); err == ErrBusy {
				mu.Lock()
				busy++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, busy)
}

func newRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger, _ := test.NewNullLogger()
	return NewRedisLockerFromClient(client, ttl, logger), mr
}

func TestRedisLocker_Busy(t *testing.T) {
	l, _ := newRedisLocker(t, time.Minute)
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestRedisLocker_Release(t *testing.T) {
	l, mr := newRedisLocker(t, time.Minute)
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(DefaultKey))

	release()
	assert.False(t, mr.Exists(DefaultKey))
	assert.NotPanics(t, release)

	release2, err := l.Acquire(ctx)
	require.NoError(t, err)
	release2()
}

func TestRedisLocker_RefreshKeepsLongBatchLocked(t *testing.T) {
	ttl := 200 * time.Millisecond
	l, mr := newRedisLocker(t, ttl)
	ctx := context.Background()

	release, err := l.Acquire(ctx)
	require.NoError(t, err)
	defer release()

	// Past three quarters of the TTL; the next refresh restores it.
	mr.FastForward(150 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return mr.TTL(DefaultKey) > 100*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond)

	// Well past the original TTL the slot is still held.
	mr.FastForward(150 * time.Millisecond)
	assert.True(t, mr.Exists(DefaultKey))
	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrBusy)
}

func TestRedisLocker_StopsRefreshingAfterRelease(t *testing.T) {
	ttl := 100 * time.Millisecond
	l, mr := newRedisLocker(t, ttl)

	release, err := l.Acquire(context.Background())
	require.NoError(t, err)
	release()

	time.Sleep(2 * ttl)
	assert.False(t, mr.Exists(DefaultKey))
}

func TestRedisLocker_DefaultTTL(t *testing.T) {
	l, _ := newRedisLocker(t, 0)
	assert.Equal(t, DefaultTTL, l.ttl)
}
