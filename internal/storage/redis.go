package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBlobs stores each blob as a plain string value under a prefixed key
type RedisBlobs struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBlobs creates a backend on an existing client. prefix defaults to "sgi:blob:".
func NewRedisBlobs(rdb *redis.Client, prefix string) *RedisBlobs {
	if prefix == "" {
		prefix = "sgi:blob:"
	}
	return &RedisBlobs{rdb: rdb, prefix: prefix}
}

func (s *RedisBlobs) key(key string) string {
	return s.prefix + key
}

func (s *RedisBlobs) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %w", err)
	}
	return b, nil
}

func (s *RedisBlobs) Save(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set blob: %w", err)
	}
	return nil
}
