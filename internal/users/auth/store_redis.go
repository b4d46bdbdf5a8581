// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/securepass/internal/platform/constants"
)

// RedisLoginAttemptRepository implements LoginAttemptRepository using Redis.
//
// Each email owns one integer key under [constants.RedisPrefixLoginFailures].
// The key expires with the lockout window, which is what lifts a lockout.
type RedisLoginAttemptRepository struct {
	client *redis.Client
}

// NewLoginAttemptRepository creates a new Redis-backed LoginAttemptRepository.
func NewLoginAttemptRepository(client *redis.Client) *RedisLoginAttemptRepository {
	return &RedisLoginAttemptRepository{client: client}
}

func loginFailureKey(email string) string {
	return constants.RedisPrefixLoginFailures + email
}

/*
Failures returns the failure count and remaining window for an email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - int: Failures in the current window
  - time.Duration: Time until the window closes
  - error: Connectivity errors
*/
func (repository *RedisLoginAttemptRepository) Failures(context context.Context, email string) (int, time.Duration, error) {
	key := loginFailureKey(email)

	pipe := repository.client.Pipeline()
	countCmd := pipe.Get(context, key)
	ttlCmd := pipe.TTL(context, key)

	if _, err := pipe.Exec(context); err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, fmt.Errorf("redis_login_attempts_get_failed: %w", err)
	}

	count, err := countCmd.Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("redis_login_attempts_parse_failed: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}

	return count, ttl, nil
}

/*
RecordFailure increments the counter for an email.

Description: INCR and EXPIRE NX run in one transaction, so the window opens on
the first failure and later failures do not extend it.

Parameters:
  - context: context.Context
  - email: string
  - window: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisLoginAttemptRepository) RecordFailure(context context.Context, email string, window time.Duration) error {
	key := loginFailureKey(email)

	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Incr(context, key)
		pipe.ExpireNX(context, key, window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_login_attempts_incr_failed: %w", err)
	}

	return nil
}

/*
Reset removes the counter for an email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisLoginAttemptRepository) Reset(context context.Context, email string) error {
	if err := repository.client.Del(context, loginFailureKey(email)).Err(); err != nil {
		return fmt.Errorf("redis_login_attempts_delete_failed: %w", err)
	}
	return nil
}
