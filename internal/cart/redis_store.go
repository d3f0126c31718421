package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const slotTTL = 30 * 24 * time.Hour

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// RedisStore keeps one JSON-encoded line sequence per user under a fixed
// key, the server-side slot abandoned carts age out of via TTL.
type RedisStore struct {
	client *redis.Client
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]Line, error) {
	data, err := r.client.Get(ctx, slotKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart lines failed: %w", err)
	}

	return lines, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart lines failed: %w", err)
	}

	if err := r.client.Set(ctx, slotKey(key), data, slotTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, slotKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func slotKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
