package domain

import (
	"context"
	"errors"
	"time"
)

// FoodProvider is the capability contract every food source implements.
// Implementations must never return raw transport errors: all failures are
// translated to *ProviderError at the boundary. GetFoodByID returns
// (nil, nil) when the id is well-formed but absent upstream.
type FoodProvider interface {
	SourceType() SourceType
	SearchFoods(ctx context.Context, opts SearchOptions) (*ProviderResponse, error)
	GetFoodByID(ctx context.Context, id string) (*Food, error)
	Config() ProviderConfig
	UpdateConfig(patch ProviderConfigPatch)
	IsEnabled() bool
	Priority() int
}

// FoodRepository defines persistence for the internal food database.
// List pages with limit/offset ordered by creation time descending; search
// is a case-insensitive substring match on name.
type FoodRepository interface {
	List(ctx context.Context, limit, offset int, search string) ([]StoredFood, error)
	GetByID(ctx context.Context, id int64) (*StoredFood, error)
	Create(ctx context.Context, food *StoredFood) (*StoredFood, error)
	Update(ctx context.Context, food *StoredFood) (*StoredFood, error)
	Delete(ctx context.Context, id int64) error
}

// CacheRepository defines the interface for caching provider responses
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ErrCacheMiss is returned when data is not found in cache
var ErrCacheMiss = errors.New("cache miss")
