package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "quiz:sess"

type RedisStore struct {
	redis  *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client, prefix: redisKeyPrefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis session save: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis session load: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	n, err := s.redis.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis session destroy: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
