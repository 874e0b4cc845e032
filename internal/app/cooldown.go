package app

import (
	"sync"
	"time"
)

// CooldownGuard enforces the minimum interval between super trivia
// batches per channel. Safe for concurrent per-key access; the
// recorded deadline only ever advances.
type CooldownGuard struct {
	cooldown time.Duration

	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewCooldownGuard(cooldown time.Duration) *CooldownGuard {
	return &CooldownGuard{
		cooldown: cooldown,
		until:    make(map[string]time.Time),
		now:      time.Now,
	}
}

// IsInCooldown reports whether a super batch may not yet start.
func (g *CooldownGuard) IsInCooldown(channel string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.until[channel])
}

// Remaining returns the time left on the cooldown, zero when expired.
func (g *CooldownGuard) Remaining(channel string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	left := g.until[channel].Sub(g.now())
	if left < 0 {
		return 0
	}
	return left
}

// RecordStart advances the channel's cooldown deadline. A shorter
// deadline never replaces a longer one already in place.
func (g *CooldownGuard) RecordStart(channel string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := g.now().Add(g.cooldown)
	if next.After(g.until[channel]) {
		g.until[channel] = next
	}
}
