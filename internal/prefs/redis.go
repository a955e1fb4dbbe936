package prefs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zetalabs/convo/internal/domain"
)

const prefsKeyPrefix = "user_context:"

// RedisStore implements Store as one JSON value per user with an absolute
// TTL refreshed on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed preference store. The TTL is
// independent of the session TTL (default 7 days).
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, userID string) (*domain.PreferenceRecord, error) {
	val, err := s.client.Get(ctx, prefsKeyPrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec domain.PreferenceRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, userID string, rec *domain.PreferenceRecord) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, prefsKeyPrefix+userID, val, s.ttl).Err()
}
