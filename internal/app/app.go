// Package app boots the Users API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/demostack/usersapi/internal/config"
	"github.com/demostack/usersapi/internal/db"
	"github.com/demostack/usersapi/internal/httpapi"
	"github.com/demostack/usersapi/internal/ratelimit"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// RunServer opens the database, prepares the defense layer, and serves the
// API until the context is cancelled.
func RunServer(ctx context.Context, cfg config.Config) error {
	dsn := cfg.DatabaseDSN()
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := db.Seed(conn); errSeed != nil {
		return errSeed
	}

	standard, strict := BuildLimiters(cfg.RateLimit)
	engine := httpapi.NewEngine(conn, standard, strict, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// BuildLimiters constructs the standard and strict rate limit managers from
// one config block. Both tiers share the window and the Redis backend
// settings; only the ceiling differs.
func BuildLimiters(cfg config.RateLimitConfig) (standard, strict *ratelimit.Manager) {
	base := ratelimit.Config{
		Window:        cfg.Window.Std(),
		RedisEnabled:  cfg.Redis.Enabled,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
	}

	standardCfg := base
	standardCfg.MaxRequests = cfg.MaxRequests
	standardCfg.RedisPrefix = cfg.Redis.Prefix + ":standard"

	strictCfg := base
	strictCfg.MaxRequests = cfg.StrictMaxRequests
	strictCfg.RedisPrefix = cfg.Redis.Prefix + ":strict"

	return ratelimit.NewManager(standardCfg, nil, nil), ratelimit.NewManager(strictCfg, nil, nil)
}
