package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const userStorageKeyPattern = "user:storage:%s"

// RedisStorage keeps each user's record in a Redis hash, one field per key.
type RedisStorage struct {
	client redis.UniversalClient
	log    *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client redis.UniversalClient, log *slog.Logger) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
	}
}

// Get reads a single hash field.
func (s *RedisStorage) Get(ctx context.Context, userID, key string) ([]byte, error) {
	data, err := s.client.HGet(ctx, redisUserStorageKey(userID), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}

		s.log.Error("failed to get user value from redis", "user_id", userID, "key", key, "error", err)
		return nil, err
	}

	return data, nil
}

// Set writes a single hash field.
func (s *RedisStorage) Set(ctx context.Context, userID, key string, value []byte) error {
	if err := s.client.HSet(ctx, redisUserStorageKey(userID), key, value).Err(); err != nil {
		s.log.Error("failed to save user value in redis", "user_id", userID, "key", key, "error", err)
		return err
	}

	return nil
}

// Clear removes a single hash field.
func (s *RedisStorage) Clear(ctx context.Context, userID, key string) error {
	if err := s.client.HDel(ctx, redisUserStorageKey(userID), key).Err(); err != nil {
		s.log.Error("failed to clear user value", "user_id", userID, "key", key, "error", err)
		return err
	}

	return nil
}

func redisUserStorageKey(userID string) string {
	return fmt.Sprintf(userStorageKeyPattern, userID)
}
