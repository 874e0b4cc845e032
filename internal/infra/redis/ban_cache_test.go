package redis

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeLoader struct {
	mu        sync.Mutex
	banned    map[string]map[string]bool // source -> question id
	listCalls int
}

func newFakeLoader(source string, ids ...string) *fakeLoader {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return &fakeLoader{banned: map[string]map[string]bool{source: set}}
}

func (l *fakeLoader) ListBanned(ctx context.Context, source string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listCalls++
	var out []string
	for id := range l.banned[source] {
		out = append(out, id)
	}
	return out, nil
}

func (l *fakeLoader) Ban(ctx context.Context, questionID, source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.banned[source] == nil {
		l.banned[source] = make(map[string]bool)
	}
	l.banned[source][questionID] = true
	return nil
}

func (l *fakeLoader) Unban(ctx context.Context, questionID, source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.banned[source], questionID)
	return nil
}

func TestBanCacheLoadsOnMiss(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	loader := newFakeLoader("opentdb", "q1", "q2")
	c := NewBanCache(client, loader, time.Hour)

	banned, err := c.IsBanned(ctx, "q1", "opentdb")
	if err != nil {
		t.Fatalf("is banned: %v", err)
	}
	if !banned {
		t.Fatalf("q1 should be banned")
	}
	if banned, _ := c.IsBanned(ctx, "q9", "opentdb"); banned {
		t.Fatalf("q9 should not be banned")
	}

	// The set is cached; further checks never hit the loader.
	if loader.listCalls != 1 {
		t.Fatalf("list calls = %d, want 1", loader.listCalls)
	}
}

func TestBanCacheEmptyListIsCached(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	loader := newFakeLoader("opentdb")
	c := NewBanCache(client, loader, time.Hour)

	for i := 0; i < 3; i++ {
		if banned, err := c.IsBanned(ctx, "q1", "opentdb"); err != nil || banned {
			t.Fatalf("banned=%v err=%v", banned, err)
		}
	}
	if loader.listCalls != 1 {
		t.Fatalf("list calls = %d, want 1 for an empty ban list", loader.listCalls)
	}
}

func TestBanCacheWriteThrough(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	loader := newFakeLoader("opentdb")
	c := NewBanCache(client, loader, time.Hour)

	if _, err := c.IsBanned(ctx, "q1", "opentdb"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := c.Ban(ctx, "q1", "opentdb"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if banned, _ := c.IsBanned(ctx, "q1", "opentdb"); !banned {
		t.Fatalf("q1 should be banned after write-through")
	}
	if !loader.banned["opentdb"]["q1"] {
		t.Fatalf("ban must reach the backing store")
	}

	if err := c.Unban(ctx, "q1", "opentdb"); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if banned, _ := c.IsBanned(ctx, "q1", "opentdb"); banned {
		t.Fatalf("q1 should be unbanned after write-through")
	}
}

func TestBanCacheReloadsAfterExpiry(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	loader := newFakeLoader("opentdb", "q1")
	c := NewBanCache(client, loader, time.Hour)

	if banned, _ := c.IsBanned(ctx, "q1", "opentdb"); !banned {
		t.Fatalf("q1 should be banned")
	}

	mr.FastForward(2 * time.Hour)
	if banned, _ := c.IsBanned(ctx, "q1", "opentdb"); !banned {
		t.Fatalf("q1 should be banned after reload")
	}
	if loader.listCalls != 2 {
		t.Fatalf("list calls = %d, want 2 after expiry", loader.listCalls)
	}
}
