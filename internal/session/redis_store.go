package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps each conversation's State as JSON under
// "session:<conversation id>". Every Save refreshes the ttl, so idle
// conversations expire on their own.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, conversationID string) (*State, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+conversationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", conversationID, err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", conversationID, err)
	}
	return &st, nil
}

func (r *RedisStore) Save(ctx context.Context, conversationID string, st *State) error {
	st.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", conversationID, err)
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+conversationID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", conversationID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("redis del session %s: %w", conversationID, err)
	}
	return nil
}
