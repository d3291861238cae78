package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, max int, window time.Duration) (*RedisFixedWindow, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisFixedWindow(rdb, max, window, ""), mr
}

func TestRedisFixedWindow_SixthAttemptDenied(t *testing.T) {
	l, mr := newRedisLimiter(t, 5, 15*time.Minute)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d", i)
	}

	d, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 15, d.RetryAfterMinutes())

	// denial leaves the counter at the ceiling
	v, err := mr.Get("rl:login:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "5", v)
}

func TestRedisFixedWindow_ResetsAfterWindow(t *testing.T) {
	l, mr := newRedisLimiter(t, 5, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, _ = l.Allow(ctx, "k")
	}
	mr.FastForward(15*time.Minute + time.Second)

	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	v, err := mr.Get("rl:login:k")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestRedisFixedWindow_FailsOpenWithError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedisFixedWindow(rdb, 5, time.Minute, "")

	d, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, d.Allowed)
}

func TestRedisFixedWindow_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedisFixedWindow(rdb, 5, time.Minute, DefaultRedisPrefix)

	_, err := l.Allow(context.Background(), "ip:203.0.113.9")
	require.NoError(t, err)

	assert.Equal(t, []string{"rl:login:ip:203.0.113.9"}, mr.Keys())
}
