// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis opens the Redis client behind the login throttle.

Only expiring failure counters live here. Losing Redis never affects vault
data: the throttle fails open and readiness reports the cache as unavailable.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// # Client Tuning

// Throttle traffic is one INCR+EXPIRE per failed login and one GET per
// attempt, so a small pool with short deadlines is enough.
const (
	poolSize     = 8
	minIdleConns = 1
	maxIdleConns = 4
	maxRetries   = 1

	dialTimeout  = 3 * time.Second
	readTimeout  = 500 * time.Millisecond
	writeTimeout = 500 * time.Millisecond
	pingTimeout  = 2 * time.Second
)

// Options parses redisURL and applies the throttle-sized pool settings.
func Options(redisURL string) (*redis.Options, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.MaxIdleConns = maxIdleConns
	options.MaxRetries = maxRetries

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	// Keeps go-redis from logging a warning on servers without CLIENT SETINFO.
	options.DisableIdentity = true

	return options, nil
}

/*
NewClient builds a client from redisURL and pings it once.

Parameters:
  - context: Bounds the initial ping.
  - redisURL: redis:// or rediss:// URL.
  - logger: Receives the connection event.

Returns:
  - *redis.Client: Connected client, owned by the caller.
  - error: Parse or ping failure.
*/
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := Options(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)

	return client, nil
}

// Ping checks the client with its own short deadline.
func Ping(context stdctx.Context, client redis.UniversalClient) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}

// Checker adapts [Ping] to the readiness check signature.
func Checker(client redis.UniversalClient) func(stdctx.Context) error {
	return func(context stdctx.Context) error {
		return Ping(context, client)
	}
}
