package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cookitup/internal/domain"
)

// newTestCache connects to REDIS_URL and skips when it is unset.
func newTestCache(t *testing.T, ttl time.Duration) (*RedisRecipeCache, string) {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	client, err := NewClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	owner := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = client.Del(context.Background(), key(owner)).Err() })
	return NewRedisRecipeCache(client, ttl), owner
}

func sampleBatch() domain.RecipeBatch {
	return domain.RecipeBatch{
		GeneratedAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Recipes: []domain.Recipe{{
			ID:           1,
			Name:         "Omelette",
			Description:  "Quick eggs",
			Ingredients:  []domain.RecipeIngredient{{Name: "Eggs", Amount: "3"}},
			Instructions: []string{"Beat", "Cook"},
			CookingTime:  "10 minutes",
			Difficulty:   "Easy",
		}},
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "recipes:latest:u1", key("u1"))
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

func TestRedisRecipeCacheRoundTrip(t *testing.T) {
	cache, owner := newTestCache(t, time.Minute)
	ctx := context.Background()

	got, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sampleBatch()
	require.NoError(t, cache.Put(ctx, owner, want))

	got, err = cache.Get(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Recipes, got.Recipes)

	ttl, err := cache.client.TTL(ctx, key(owner)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, cache.Delete(ctx, owner))
	got, err = cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.Nil(t, got)
}
