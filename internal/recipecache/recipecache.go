// Package recipecache keeps the latest recipe batch of each user. A new
// batch replaces the previous one.
package recipecache

import (
	"context"

	"github.com/vbonduro/cookitup/internal/domain"
)

type Cache interface {
	Put(ctx context.Context, owner string, batch domain.RecipeBatch) error
	// Get returns nil, nil when owner has no live batch.
	Get(ctx context.Context, owner string) (*domain.RecipeBatch, error)
	Delete(ctx context.Context, owner string) error
}
