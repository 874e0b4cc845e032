package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps per-channel recently-served question ids in Redis.
// Each served id gets its own key with TTL equal to the lookback
// window, so expiry does the pruning for us and the history is shared
// across instances.
type HistoryStore struct {
	client   *redis.Client
	lookback time.Duration
}

func NewHistoryStore(client *redis.Client, lookback time.Duration) *HistoryStore {
	return &HistoryStore{client: client, lookback: lookback}
}

func (s *HistoryStore) HasRecentlyServed(ctx context.Context, channel, questionID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(channel, questionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *HistoryStore) RecordServed(ctx context.Context, channel, questionID string) error {
	return s.client.Set(ctx, s.key(channel, questionID), "1", s.lookback).Err()
}

func (s *HistoryStore) key(channel, questionID string) string {
	return "trivia:history:" + channel + ":" + questionID
}
