package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"github.com/redis/go-redis/v9"
)

// MenuCache caches the rendered menu, the hottest read path in the app.
type MenuCache interface {
	Get(ctx context.Context) (*Menu, error)
	Set(ctx context.Context, menu *Menu) error
	Invalidate(ctx context.Context) error
}

// Menu is the full browsable catalog: categories with their active items.
type Menu struct {
	Categories []*domain.Category `json:"categories"`
	Items      []*domain.MenuItem `json:"items"`
}

var ErrCacheMiss = errors.New("cache miss")

const menuCacheKey = "menu:v1"

func NewRedisMenuCache(client *redis.Client) *RedisMenuCache {
	return &RedisMenuCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

type RedisMenuCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisMenuCache) Get(ctx context.Context) (*Menu, error) {
	data, err := r.client.Get(ctx, menuCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var menu Menu
	if err := json.Unmarshal(data, &menu); err != nil {
		return nil, fmt.Errorf("unmarshal menu failed: %w", err)
	}

	return &menu, nil
}

func (r *RedisMenuCache) Set(ctx context.Context, menu *Menu) error {
	data, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Second
	if err := r.client.Set(ctx, menuCacheKey, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisMenuCache) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, menuCacheKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
