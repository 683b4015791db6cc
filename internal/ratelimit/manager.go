package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

// Manager selects a limiter backend and enforces a single window/ceiling
// pair. Redis serves when configured; on Redis errors a breaker trips for
// thirty seconds and checks fall back to the in-memory sliding window.
type Manager struct {
	cfg            Config
	nowFn          func() time.Time
	memoryLimiter  Limiter
	newRedisClient RedisClientFactory

	mu           sync.Mutex
	redisLimiter *RedisLimiter
	breakerUntil time.Time
}

// NewManager constructs a Manager with default dependencies when nil.
func NewManager(cfg Config, nowFn func() time.Time, newRedisClient RedisClientFactory) *Manager {
	if nowFn == nil {
		nowFn = time.Now
	}
	if newRedisClient == nil {
		newRedisClient = redis.NewClient
	}
	return &Manager{
		cfg:            cfg,
		nowFn:          nowFn,
		memoryLimiter:  NewSlidingWindowLimiter(cfg.Window, cfg.MaxRequests),
		newRedisClient: newRedisClient,
	}
}

// Window returns the configured window length.
func (m *Manager) Window() time.Duration {
	return m.cfg.Window
}

// Allow checks whether the request should be admitted using the best
// available backend. The limiter never fails a request on backend errors;
// admission degrades to the in-memory window instead.
func (m *Manager) Allow(ctx context.Context, key string) (Result, error) {
	if m == nil || m.cfg.MaxRequests <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	now := m.nowFn()

	if m.cfg.RedisEnabled {
		if result, ok := m.allowRedis(ctx, key, now); ok {
			return result, nil
		}
	}
	return m.memoryLimiter.Allow(ctx, key, now)
}

func (m *Manager) allowRedis(ctx context.Context, key string, now time.Time) (Result, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m.isBreakerActive(now) {
		return Result{}, false
	}
	limiter, errEnsure := m.ensureRedis(ctx)
	if errEnsure != nil {
		m.tripBreaker(errEnsure, now)
		return Result{}, false
	}
	result, errAllow := limiter.Allow(ctx, key, now)
	if errAllow != nil {
		m.tripBreaker(errAllow, now)
		return Result{}, false
	}
	return result, true
}

func (m *Manager) isBreakerActive(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.breakerUntil.IsZero() {
		return false
	}
	if now.Before(m.breakerUntil) {
		return true
	}
	m.breakerUntil = time.Time{}
	return false
}

func (m *Manager) tripBreaker(err error, now time.Time) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.breakerUntil.IsZero() && now.Before(m.breakerUntil) {
		return
	}
	m.breakerUntil = now.Add(redisBreakerDuration)
	log.WithError(err).Warn("rate limit: redis unavailable, falling back to memory")
}

func (m *Manager) ensureRedis(ctx context.Context) (*RedisLimiter, error) {
	addr := strings.TrimSpace(m.cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis: missing address")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.redisLimiter != nil {
		return m.redisLimiter, nil
	}

	db := m.cfg.RedisDB
	if db < 0 {
		db = 0
	}
	client := m.newRedisClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(m.cfg.RedisPassword),
		DB:       db,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if errPing := client.Ping(ctxPing).Err(); errPing != nil {
		_ = client.Close()
		return nil, errPing
	}
	m.redisLimiter = NewRedisLimiter(client, strings.TrimSpace(m.cfg.RedisPrefix), m.cfg.Window, m.cfg.MaxRequests)
	return m.redisLimiter, nil
}
