package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter provides rate limit checks. The window and admission ceiling are
// fixed per limiter instance; the key selects the caller being counted.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (Result, error)
}

// Config holds the settings for one limiter instance.
type Config struct {
	// Window is the trailing interval requests are counted over.
	Window time.Duration
	// MaxRequests is the admission ceiling shared across all keys.
	MaxRequests int

	// Redis backend settings; when disabled the in-memory limiter serves
	// alone.
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}
