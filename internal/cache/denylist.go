package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const blockedValue = "Blocked"

// TokenDenylist records revoked session tokens until their natural expiry.
type TokenDenylist struct {
	client *redisv9.Client
	now    func() time.Time
}

func NewTokenDenylist(client *redisv9.Client) *TokenDenylist {
	return &TokenDenylist{client: client, now: time.Now}
}

// Block marks token as revoked. The entry expires at expiresAt so the set
// never outgrows the live token population. Tokens that already expired are
// skipped since verification rejects them anyway.
func (d *TokenDenylist) Block(ctx context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(d.now()) {
		return nil
	}
	err := d.client.SetArgs(ctx, d.key(token), blockedValue, redisv9.SetArgs{ExpireAt: expiresAt}).Err()
	if err != nil {
		return fmt.Errorf("redis block token failed: %w", err)
	}
	return nil
}

func (d *TokenDenylist) IsBlocked(ctx context.Context, token string) (bool, error) {
	exists, err := d.client.Exists(ctx, d.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check token failed: %w", err)
	}
	return exists > 0, nil
}

func (d *TokenDenylist) Ping(ctx context.Context) error {
	if err := d.client.Ping(ctx).Err(); err != nil && !errors.Is(err, redisv9.Nil) {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (d *TokenDenylist) key(token string) string {
	return "token:" + token
}
