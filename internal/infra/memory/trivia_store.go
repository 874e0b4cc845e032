package memory

import (
	"context"
	"sync"
	"time"
)

// BanStore is an in-memory banned-question registry, keyed by question
// id plus source. Useful for single-instance deploys and tests.
type BanStore struct {
	mu     sync.RWMutex
	banned map[string]struct{}
}

func NewBanStore() *BanStore {
	return &BanStore{banned: make(map[string]struct{})}
}

func (s *BanStore) IsBanned(_ context.Context, questionID, source string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.banned[banKey(questionID, source)]
	return ok, nil
}

func (s *BanStore) Ban(_ context.Context, questionID, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[banKey(questionID, source)] = struct{}{}
	return nil
}

func (s *BanStore) Unban(_ context.Context, questionID, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.banned, banKey(questionID, source))
	return nil
}

func banKey(questionID, source string) string {
	return source + ":" + questionID
}

// HistoryStore tracks recently served question ids per channel with a
// configurable lookback window.
type HistoryStore struct {
	lookback time.Duration

	mu     sync.Mutex
	served map[string]map[string]time.Time // channel -> question id -> served at
	now    func() time.Time
}

func NewHistoryStore(lookback time.Duration) *HistoryStore {
	return &HistoryStore{
		lookback: lookback,
		served:   make(map[string]map[string]time.Time),
		now:      time.Now,
	}
}

func (s *HistoryStore) HasRecentlyServed(_ context.Context, channel, questionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(channel)
	_, ok := s.served[channel][questionID]
	return ok, nil
}

func (s *HistoryStore) RecordServed(_ context.Context, channel, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.served[channel] == nil {
		s.served[channel] = make(map[string]time.Time)
	}
	s.served[channel][questionID] = s.now()
	return nil
}

func (s *HistoryStore) pruneLocked(channel string) {
	cutoff := s.now().Add(-s.lookback)
	for id, at := range s.served[channel] {
		if at.Before(cutoff) {
			delete(s.served[channel], id)
		}
	}
}
