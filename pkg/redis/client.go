// Package redis opens the shared Redis connection used by the job queue,
// the idempotency store and the rate limiter.
package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Pool sizing is fixed: a single bot process with a handful of Redis
// consumers never needs a tunable pool.
const (
	poolSize     = 10
	minIdleConns = 2
	maxRetries   = 3
)

// Config holds the connection parameters exposed through the redis section
// of the app config.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client embeds the go-redis client. Consumers that need raw commands
// (Lua scripts, pipelines, SETNX) reach through the embedded field.
type Client struct {
	*redis.Client
}

// New connects to Redis and verifies the connection with a bounded Ping.
func New(ctx context.Context, cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
		MaxRetries:   maxRetries,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Client{rdb}, nil
}
