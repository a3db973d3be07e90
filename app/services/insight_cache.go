package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheUnavailable is returned when no cache backend is configured.
var ErrCacheUnavailable = errors.New("insight cache is not available")

// InsightStore caches generated insights keyed by a content hash of the
// analytics state, and tracks the generation cooldown.
type InsightStore interface {
	Get(ctx context.Context, contentHash string) ([]byte, error)
	Put(ctx context.Context, contentHash string, payload []byte) error
	InCooldown(ctx context.Context) (bool, error)
	StartCooldown(ctx context.Context) error
}

// RedisInsightStore implements InsightStore on redis. Entries expire after the
// configured TTL; the cooldown is a separate short-lived key.
type RedisInsightStore struct {
	rc        *redis.Client
	keyPrefix string
	ttl       time.Duration
	cooldown  time.Duration
}

// NewRedisInsightStore creates a new redis-backed insight store.
func NewRedisInsightStore(rc *redis.Client, keyPrefix string, ttl, cooldown time.Duration) *RedisInsightStore {
	return &RedisInsightStore{
		rc:        rc,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		cooldown:  cooldown,
	}
}

func (s *RedisInsightStore) insightKey(contentHash string) string {
	return fmt.Sprintf("%s:insights:%s", s.keyPrefix, contentHash)
}

func (s *RedisInsightStore) cooldownKey() string {
	return fmt.Sprintf("%s:insights:cooldown", s.keyPrefix)
}

// Get returns the cached payload for the hash, or nil on a miss.
func (s *RedisInsightStore) Get(ctx context.Context, contentHash string) ([]byte, error) {
	if s.rc == nil {
		return nil, ErrCacheUnavailable
	}
	bs, err := s.rc.Get(ctx, s.insightKey(contentHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read insight cache: %w", err)
	}
	return bs, nil
}

// Put stores the payload under the hash with the configured TTL.
func (s *RedisInsightStore) Put(ctx context.Context, contentHash string, payload []byte) error {
	if s.rc == nil {
		return ErrCacheUnavailable
	}
	if err := s.rc.Set(ctx, s.insightKey(contentHash), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write insight cache: %w", err)
	}
	return nil
}

// InCooldown reports whether a generation happened within the cooldown window.
func (s *RedisInsightStore) InCooldown(ctx context.Context) (bool, error) {
	if s.rc == nil {
		return false, ErrCacheUnavailable
	}
	n, err := s.rc.Exists(ctx, s.cooldownKey()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check insight cooldown: %w", err)
	}
	return n > 0, nil
}

// StartCooldown arms the cooldown window after a generation.
func (s *RedisInsightStore) StartCooldown(ctx context.Context) error {
	if s.rc == nil {
		return ErrCacheUnavailable
	}
	if err := s.rc.Set(ctx, s.cooldownKey(), "1", s.cooldown).Err(); err != nil {
		return fmt.Errorf("failed to start insight cooldown: %w", err)
	}
	return nil
}
