package ratelimit

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed fixedwindow.lua
var fixedWindowLua string

var fixedWindowScript = redis.NewScript(fixedWindowLua)

var _ Limiter = (*RedisLimiter)(nil)

// RedisLimiter runs the fixed-window counter as a Lua script so the
// read-check-increment sequence is atomic across concurrent callers.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	result, err := fixedWindowScript.Run(ctx, l.client,
		[]string{keyPrefix + key},
		l.limit,
		int(l.window.Seconds()),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	return result == 1, nil
}
