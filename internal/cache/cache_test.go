package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redisv9.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestTokenDenylist_BlockUntilExpiry(t *testing.T) {
	mr, client := newRedis(t)
	d := NewTokenDenylist(client)
	ctx := context.Background()

	blocked, err := d.IsBlocked(ctx, "abc")
	require.NoError(t, err)
	require.False(t, blocked)

	require.NoError(t, d.Block(ctx, "abc", time.Now().Add(30*time.Minute)))

	blocked, err = d.IsBlocked(ctx, "abc")
	require.NoError(t, err)
	require.True(t, blocked)

	val, err := mr.Get("token:abc")
	require.NoError(t, err)
	require.Equal(t, "Blocked", val)

	ttl := mr.TTL("token:abc")
	require.Greater(t, ttl, 29*time.Minute)
	require.LessOrEqual(t, ttl, 30*time.Minute)

	mr.FastForward(31 * time.Minute)
	blocked, err = d.IsBlocked(ctx, "abc")
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestTokenDenylist_SkipsExpiredToken(t *testing.T) {
	mr, client := newRedis(t)
	d := NewTokenDenylist(client)

	require.NoError(t, d.Block(context.Background(), "old", time.Now().Add(-time.Minute)))
	require.False(t, mr.Exists("token:old"))
}

func TestTokenDenylist_RedisDown(t *testing.T) {
	mr, client := newRedis(t)
	d := NewTokenDenylist(client)
	require.NoError(t, d.Ping(context.Background()))
	mr.Close()

	_, err := d.IsBlocked(context.Background(), "abc")
	require.Error(t, err)
	require.Error(t, d.Block(context.Background(), "abc", time.Now().Add(time.Hour)))
}

func TestRateLimiter_AllowAuth(t *testing.T) {
	mr, client := newRedis(t)
	rl := NewRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	res, err := rl.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, 1, res.Remaining)

	res, err = rl.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)

	res, err = rl.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 2, res.Limit)

	other, err := rl.AllowAuth(ctx, "10.0.0.2")
	require.NoError(t, err)
	require.True(t, other.Allowed)

	mr.FastForward(61 * time.Second)
	res, err = rl.AllowAuth(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, res.Allowed)
}
