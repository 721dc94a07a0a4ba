package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"claimshub/pkg/platform/sentinel"
)

const redisKeyPrefix = "draft:"

// RedisStore persists drafts in Redis with a session TTL so abandoned drafts
// expire on their own. Every write refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed draft store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, sessionID, tenant string) (Draft, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+formKey(sessionID, tenant)).Result()
	if errors.Is(err, redis.Nil) {
		return Draft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil || d == nil {
		// Corrupt data reads as "no draft"; the flow starts fresh.
		return Draft{}, nil
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID, tenant string, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+formKey(sessionID, tenant), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID, tenant string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+formKey(sessionID, tenant)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Stash(ctx context.Context, sessionID, tenant string, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+dataKey(sessionID, tenant), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("stash snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) LoadStash(ctx context.Context, sessionID, tenant string) (Snapshot, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+dataKey(sessionID, tenant)).Result()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, sentinel.ErrNotFound
	}
	return snap, nil
}

func (s *RedisStore) ClearStash(ctx context.Context, sessionID, tenant string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+dataKey(sessionID, tenant)).Err(); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}
