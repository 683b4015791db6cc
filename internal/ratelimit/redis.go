package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisSlidingScript keeps the sliding log in a sorted set scored by request
// time in microseconds. Entries at or before the window start are pruned,
// the survivors are counted against the ceiling, and only admitted requests
// are recorded.
var redisSlidingScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
local count = redis.call("ZCARD", KEYS[1])
if count >= tonumber(ARGV[2]) then
  return {0, count}
end
redis.call("ZADD", KEYS[1], ARGV[3], ARGV[3] .. "-" .. ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return {1, count + 1}
`)

// RedisLimiter implements the sliding-log algorithm on Redis for
// multi-process deployments.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
	max    int
	seq    func() int64
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string, window time.Duration, maxRequests int) *RedisLimiter {
	// The counter keeps sorted-set members distinct even when two requests
	// share the same microsecond score.
	var counter atomic.Int64
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
		window: window,
		max:    maxRequests,
		seq:    func() int64 { return counter.Add(1) },
	}
}

// Allow checks whether the request should be admitted within the trailing
// window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, now time.Time) (Result, error) {
	if l == nil || l.client == nil || l.max <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	windowStart := now.Add(-l.window).UnixMicro()
	score := now.UnixMicro()
	ttlMs := l.window.Milliseconds() + 1000

	res, errEval := redisSlidingScript.Run(ctx, l.client, []string{l.buildKey(key)},
		windowStart,
		l.max,
		score,
		strconv.FormatInt(l.seq(), 10),
		ttlMs,
	).Result()
	if errEval != nil {
		return Result{}, errEval
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return Result{}, errors.New("rate limit redis: unexpected response shape")
	}
	allowed, okAllowed := toInt64(values[0])
	count, okCount := toInt64(values[1])
	if !okAllowed || !okCount {
		return Result{}, errors.New("rate limit redis: unexpected response type")
	}

	reset := now.Add(l.window)
	if allowed == 0 {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, Reset: reset}, nil
}

func (l *RedisLimiter) buildKey(key string) string {
	if l.prefix == "" {
		return key
	}
	return l.prefix + ":" + key
}

func toInt64(v interface{}) (int64, bool) {
	switch value := v.(type) {
	case int64:
		return value, true
	case int:
		return int64(value), true
	case uint64:
		return int64(value), true
	default:
		return 0, false
	}
}
