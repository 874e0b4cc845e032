package app

import (
	"sync"

	"trivia-game-service/internal/domain"
)

// queuedSuper is a super game waiting for the channel's slot.
type queuedSuper struct {
	actionID    string
	awardAmount int
	ttlSeconds  int
}

// GameStore holds at most one live game per channel plus a bounded
// FIFO of queued super games. Slot reservation is a compare-and-set
// keyed by channel; resolution is a compare-and-set keyed by game id,
// which doubles as the fencing token for late expiry timers.
type GameStore struct {
	queueCap int

	mu     sync.Mutex
	active map[string]*domain.GameState
	queues map[string][]queuedSuper
	byID   map[string]string // game id -> channel
}

func NewGameStore(queueCap int) *GameStore {
	return &GameStore{
		queueCap: queueCap,
		active:   make(map[string]*domain.GameState),
		queues:   make(map[string][]queuedSuper),
		byID:     make(map[string]string),
	}
}

// Reserve atomically claims the channel's slot for a new game. Fails
// with ErrSlotConflict when another game is live.
func (s *GameStore) Reserve(gs *domain.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[gs.Channel]; busy {
		return domain.ErrSlotConflict
	}
	s.active[gs.Channel] = gs
	s.byID[gs.GameID] = gs.Channel
	return nil
}

// Active returns the live game for a channel, if any.
func (s *GameStore) Active(channel string) (*domain.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.active[channel]
	return gs, ok
}

// ChannelForGame resolves the routing key for an expiry action.
func (s *GameStore) ChannelForGame(gameID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.byID[gameID]
	return ch, ok
}

// Resolve removes the game iff the store still holds that exact game
// id, releasing the slot. A second resolve for the same id is a no-op
// returning false, which is how late timer fires are fenced off.
func (s *GameStore) Resolve(gameID string) (*domain.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.byID[gameID]
	if !ok {
		return nil, false
	}
	gs := s.active[channel]
	if gs == nil || gs.GameID != gameID {
		return nil, false
	}
	delete(s.active, channel)
	delete(s.byID, gameID)
	return gs, true
}

// EnqueueSuper appends a super game to the channel's queue, failing
// when the configured cap is reached.
func (s *GameStore) EnqueueSuper(channel string, q queuedSuper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queues[channel]) >= s.queueCap {
		return domain.ErrSuperQueueFull
	}
	s.queues[channel] = append(s.queues[channel], q)
	return nil
}

// DequeueSuper pops the next queued super game for a channel.
func (s *GameStore) DequeueSuper(channel string) (queuedSuper, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queues[channel]
	if len(queue) == 0 {
		return queuedSuper{}, false
	}
	next := queue[0]
	s.queues[channel] = queue[1:]
	return next, true
}

// QueueLen reports how many super games are waiting in a channel.
func (s *GameStore) QueueLen(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[channel])
}

// Clear drops the live game and every queued super game for a channel,
// returning how many games were discarded.
func (s *GameStore) Clear(channel string) (*domain.GameState, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := len(s.queues[channel])
	delete(s.queues, channel)
	gs, ok := s.active[channel]
	if ok {
		delete(s.active, channel)
		delete(s.byID, gs.GameID)
		dropped++
	}
	return gs, dropped
}

// ActiveCount reports the number of live games across channels.
func (s *GameStore) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
