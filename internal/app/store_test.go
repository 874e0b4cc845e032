package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"trivia-game-service/internal/domain"
)

func testGame(id, channel string) *domain.GameState {
	return &domain.GameState{GameID: id, Channel: channel}
}

func TestGameStoreReserveConflict(t *testing.T) {
	s := NewGameStore(5)

	if err := s.Reserve(testGame("g1", "chan")); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	if err := s.Reserve(testGame("g2", "chan")); !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("second reserve: got %v, want ErrSlotConflict", err)
	}
	if err := s.Reserve(testGame("g3", "other")); err != nil {
		t.Fatalf("reserve in other channel: %v", err)
	}
	if got := s.ActiveCount(); got != 2 {
		t.Fatalf("active count = %d, want 2", got)
	}
}

func TestGameStoreResolveFencesSecondCall(t *testing.T) {
	s := NewGameStore(5)
	if err := s.Reserve(testGame("g1", "chan")); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	gs, ok := s.Resolve("g1")
	if !ok || gs.GameID != "g1" {
		t.Fatalf("first resolve: ok=%v gs=%v", ok, gs)
	}
	if _, ok := s.Resolve("g1"); ok {
		t.Fatalf("second resolve must be fenced off")
	}
	if _, ok := s.Active("chan"); ok {
		t.Fatalf("slot should be free after resolve")
	}
}

func TestGameStoreResolveIgnoresStaleID(t *testing.T) {
	s := NewGameStore(5)
	if err := s.Reserve(testGame("g1", "chan")); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	s.Resolve("g1")
	if err := s.Reserve(testGame("g2", "chan")); err != nil {
		t.Fatalf("reserve successor: %v", err)
	}

	if _, ok := s.Resolve("g1"); ok {
		t.Fatalf("stale id must not resolve the successor game")
	}
	if gs, ok := s.Active("chan"); !ok || gs.GameID != "g2" {
		t.Fatalf("successor should still be live, got %v ok=%v", gs, ok)
	}
}

func TestGameStoreConcurrentReserveSingleWinner(t *testing.T) {
	s := NewGameStore(5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if s.Reserve(testGame(fmt.Sprintf("g%d", i), "chan")) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
}

func TestGameStoreSuperQueueFIFOAndCap(t *testing.T) {
	s := NewGameStore(2)

	if err := s.EnqueueSuper("chan", queuedSuper{actionID: "a1"}); err != nil {
		t.Fatalf("enqueue 1: %v", err)
	}
	if err := s.EnqueueSuper("chan", queuedSuper{actionID: "a2"}); err != nil {
		t.Fatalf("enqueue 2: %v", err)
	}
	if err := s.EnqueueSuper("chan", queuedSuper{actionID: "a3"}); !errors.Is(err, domain.ErrSuperQueueFull) {
		t.Fatalf("enqueue over cap: got %v, want ErrSuperQueueFull", err)
	}

	next, ok := s.DequeueSuper("chan")
	if !ok || next.actionID != "a1" {
		t.Fatalf("dequeue = %v ok=%v, want a1", next, ok)
	}
	if got := s.QueueLen("chan"); got != 1 {
		t.Fatalf("queue len = %d, want 1", got)
	}
}

func TestGameStoreClear(t *testing.T) {
	s := NewGameStore(5)
	if err := s.Reserve(testGame("g1", "chan")); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	s.EnqueueSuper("chan", queuedSuper{actionID: "a1"})
	s.EnqueueSuper("chan", queuedSuper{actionID: "a2"})

	gs, dropped := s.Clear("chan")
	if gs == nil || gs.GameID != "g1" {
		t.Fatalf("cleared game = %v, want g1", gs)
	}
	if dropped != 3 {
		t.Fatalf("dropped = %d, want 3", dropped)
	}
	if _, ok := s.Active("chan"); ok {
		t.Fatalf("slot should be free after clear")
	}
	if _, ok := s.Resolve("g1"); ok {
		t.Fatalf("cleared game id must not resolve")
	}

	if gs, dropped := s.Clear("chan"); gs != nil || dropped != 0 {
		t.Fatalf("clear on empty channel = %v %d", gs, dropped)
	}
}
