package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Atomic check-then-increment: at the ceiling the counter is left alone and
// only the remaining TTL is reported; otherwise INCR, and PEXPIRE on first hit.
var checkIncrScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[2]) then
  return {0, redis.call("PTTL", KEYS[1])}
end
current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {1, redis.call("PTTL", KEYS[1])}
`)

// DefaultRedisPrefix namespaces login counters, e.g. rl:login:ip:203.0.113.9.
const DefaultRedisPrefix = "rl:login:"

// RedisFixedWindow is a Limiter shared by every process pointing at the same
// Redis. Keys expire with their window, so nothing needs sweeping.
type RedisFixedWindow struct {
	rdb    *redis.Client
	max    int
	window time.Duration
	prefix string
}

func NewRedisFixedWindow(rdb *redis.Client, max int, window time.Duration, prefix string) *RedisFixedWindow {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisFixedWindow{rdb: rdb, max: max, window: window, prefix: prefix}
}

func (l *RedisFixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := checkIncrScript.Run(ctx, l.rdb, []string{l.prefix + key}, l.window.Milliseconds(), l.max).Slice()
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Decision{Allowed: true}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}
	allowed, _ := res[0].(int64)
	pttl, _ := res[1].(int64)
	if allowed == 1 {
		return Decision{Allowed: true}, nil
	}
	retry := time.Duration(pttl) * time.Millisecond
	if pttl < 0 {
		retry = l.window
	}
	return Decision{Allowed: false, RetryAfter: retry}, nil
}

var _ Limiter = (*RedisFixedWindow)(nil)
