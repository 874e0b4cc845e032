package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	s := NewHistoryStore(client, time.Hour)

	served, err := s.HasRecentlyServed(ctx, "chan", "q1")
	if err != nil || served {
		t.Fatalf("fresh store: served=%v err=%v", served, err)
	}

	if err := s.RecordServed(ctx, "chan", "q1"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if served, _ := s.HasRecentlyServed(ctx, "chan", "q1"); !served {
		t.Fatalf("q1 should be recent")
	}
	if served, _ := s.HasRecentlyServed(ctx, "other", "q1"); served {
		t.Fatalf("history is scoped by channel")
	}

	if ttl := mr.TTL("trivia:history:chan:q1"); ttl != time.Hour {
		t.Fatalf("key ttl = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if served, _ := s.HasRecentlyServed(ctx, "chan", "q1"); served {
		t.Fatalf("q1 should have expired with the lookback window")
	}
}
