package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gruzdev-dev/codex-recipes/configs"
)

const keyPrefix = "revoked-token:"

// Revoker keeps revoked token ids as expiring redis keys.
type Revoker struct {
	client *goredis.Client
}

func NewClient(ctx context.Context, cfg *configs.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewRevoker(client *goredis.Client) *Revoker {
	return &Revoker{client: client}
}

func (r *Revoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+tokenID, 1, ttl).Err()
}

func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
