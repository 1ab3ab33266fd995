// Package redis constructs the optional Redis client used by the rate limiter.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// PingTimeout bounds the startup connectivity check.
const PingTimeout = 2 * time.Second

// NewClient parses cfg.URL and pings the server. It returns nil, with no
// error, when Redis is disabled or unreachable; callers then run without
// the features Redis backs. A malformed URL is a configuration error.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*goredis.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis disabled")
		return nil, nil
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, continuing without it",
			slog.String("addr", opts.Addr),
			slog.String("error", redact.Error(err)))
		_ = client.Close()
		return nil, nil
	}

	logger.Info("redis connected", slog.String("addr", opts.Addr), slog.Int("db", opts.DB))
	return client, nil
}
