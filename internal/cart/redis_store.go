package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pos:cart:"

// RedisStore keeps carts in Redis as JSON values that expire after ttl of inactivity
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps a Redis client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c := New()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	c.normalize()
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if c.IsEmpty() {
		return s.Clear(ctx, sessionID)
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}
