package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// Fixed window counter; the first hit in a window sets the expiry.
var fixedWindowScript = redisv9.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('EXPIRE', KEYS[1], ARGV[2])
end
local ttl = redis.call('TTL', KEYS[1])
if ttl < 0 then
	ttl = tonumber(ARGV[2])
end
if current > tonumber(ARGV[1]) then
	return {0, 0, ttl}
end
return {1, tonumber(ARGV[1]) - current, ttl}
`)

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
	Limit     int
}

type RateLimiter struct {
	client *redisv9.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redisv9.Client, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window < time.Second {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// AllowAuth counts one authentication attempt from ip.
func (r *RateLimiter) AllowAuth(ctx context.Context, ip string) (*RateLimitResult, error) {
	return r.check(ctx, fmt.Sprintf("ratelimit:%s:auth", ip))
}

func (r *RateLimiter) check(ctx context.Context, key string) (*RateLimitResult, error) {
	raw, err := fixedWindowScript.Run(ctx, r.client, []string{key}, r.limit, int(r.window.Seconds())).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) < 3 {
		return nil, fmt.Errorf("unexpected rate limit result format")
	}
	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	ttl, _ := values[2].(int64)

	return &RateLimitResult{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		ResetIn:   time.Duration(ttl) * time.Second,
		Limit:     r.limit,
	}, nil
}
