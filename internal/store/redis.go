package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const translationTTL = 24 * time.Hour

// RedisStore handles Redis operations: the translation cache and the shared
// client used by the rate limiter.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Client exposes the underlying client. Nil-safe.
func (s *RedisStore) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// translationKey returns the cache key for a translation of text.
func translationKey(text, sourceLang, targetLang string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("translate:%s:%s:%s", sourceLang, targetLang, hex.EncodeToString(sum[:]))
}

// GetTranslation returns a cached translation. ok is false on a miss.
func (s *RedisStore) GetTranslation(ctx context.Context, text, sourceLang, targetLang string) (string, bool, error) {
	val, err := s.client.Get(ctx, translationKey(text, sourceLang, targetLang)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetTranslation caches a translation.
func (s *RedisStore) SetTranslation(ctx context.Context, text, sourceLang, targetLang, translated string) error {
	return s.client.Set(ctx, translationKey(text, sourceLang, targetLang), translated, translationTTL).Err()
}
