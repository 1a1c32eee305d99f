package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vbonduro/cookitup/internal/domain"
)

const keyPrefix = "recipes:latest:"

// NewClient connects to the redis server at url and pings it.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			slog.Error("failed to close redis client", "error", cerr)
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisRecipeCache stores each owner's batch under one key with a TTL. A zero
// ttl keeps keys until they are replaced.
type RedisRecipeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRecipeCache(client *redis.Client, ttl time.Duration) *RedisRecipeCache {
	return &RedisRecipeCache{client: client, ttl: ttl}
}

func key(owner string) string {
	return keyPrefix + owner
}

func (c *RedisRecipeCache) Put(ctx context.Context, owner string, batch domain.RecipeBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal recipes: %w", err)
	}

	if err := c.client.Set(ctx, key(owner), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save recipes to Redis: %w", err)
	}
	return nil
}

func (c *RedisRecipeCache) Get(ctx context.Context, owner string) (*domain.RecipeBatch, error) {
	data, err := c.client.Get(ctx, key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes from Redis: %w", err)
	}

	var batch domain.RecipeBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipes: %w", err)
	}
	return &batch, nil
}

func (c *RedisRecipeCache) Delete(ctx context.Context, owner string) error {
	if err := c.client.Del(ctx, key(owner)).Err(); err != nil {
		return fmt.Errorf("failed to delete recipes from Redis: %w", err)
	}
	return nil
}
