package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"potholeai/internal/config"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// PredictionCache keeps classification text in redis keyed by artifact
// fingerprint.
type PredictionCache struct {
	client redis.Cmdable
	prefix string
}

func NewPredictionCache(client redis.Cmdable, prefix string) *PredictionCache {
	return &PredictionCache{client: client, prefix: prefix}
}

func (c *PredictionCache) Lookup(ctx context.Context, fingerprint string) (string, bool, error) {
	text, err := c.client.Get(ctx, c.prefix+fingerprint).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get prediction: %w", err)
	}
	return text, true, nil
}

func (c *PredictionCache) Store(ctx context.Context, fingerprint, text string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+fingerprint, text, ttl).Err(); err != nil {
		return fmt.Errorf("set prediction: %w", err)
	}
	return nil
}
