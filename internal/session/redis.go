package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zetalabs/convo/internal/domain"
)

const (
	convKeyPrefix    = "conv:"
	pendingKeyPrefix = "pending:"

	// A stashed clarification query is only useful for the next few
	// turns of the same conversation.
	pendingTTL = 10 * time.Minute
)

// RedisStore implements Store on Redis lists: LPUSH newest-first, LTRIM to
// the window cap, EXPIRE for the sliding TTL. The client connects lazily on
// first use.
type RedisStore struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

// NewRedisStore creates a Redis-backed session store keeping maxTurns turns
// per session with the given sliding TTL.
func NewRedisStore(client *redis.Client, maxTurns int, ttl time.Duration) *RedisStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, maxTurns: maxTurns, ttl: ttl}
}

// Append implements Store.
func (s *RedisStore) Append(ctx context.Context, key domain.SessionKey, turn domain.Turn) error {
	raw, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	k := convKeyPrefix + key.String()
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, k, raw)
	pipe.LTrim(ctx, k, 0, int64(s.maxTurns-1))
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// History implements Store.
func (s *RedisStore) History(ctx context.Context, key domain.SessionKey, limit int) ([]domain.Turn, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	raws, err := s.client.LRange(ctx, convKeyPrefix+key.String(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	// Stored newest-first; reverse to chronological order.
	turns := make([]domain.Turn, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		var t domain.Turn
		if err := json.Unmarshal([]byte(raws[i]), &t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context, key domain.SessionKey) error {
	return s.client.Del(ctx,
		convKeyPrefix+key.String(),
		pendingKeyPrefix+key.String(),
	).Err()
}

// SetPendingQuery implements Store.
func (s *RedisStore) SetPendingQuery(ctx context.Context, key domain.SessionKey, query string) error {
	return s.client.Set(ctx, pendingKeyPrefix+key.String(), query, pendingTTL).Err()
}

// PendingQuery implements Store.
func (s *RedisStore) PendingQuery(ctx context.Context, key domain.SessionKey) (string, error) {
	k := pendingKeyPrefix + key.String()
	val, err := s.client.GetDel(ctx, k).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
